package storage

import "mime/multipart"

// Storage 统一文件存储接口，支持本地磁盘、S3 和 GCS
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
	DeleteFile(path string) error
}
