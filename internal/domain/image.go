package domain

// Image описывает изображение товара, которое хранится в S3
type Image struct {
	Bytes     []byte
	ObjectKey string
	Size      int64
	MimeType  string
}

func NewImage(objectKey string, data []byte, mimeType string) *Image {
	return &Image{
		Bytes:     data,
		ObjectKey: objectKey,
		Size:      int64(len(data)),
		MimeType:  mimeType,
	}
}
