package handlers

import (
	"io"
	"mime/multipart"

	"github.com/ignatzorin/mebel-backend/internal/service"
)

func toUploadFile(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
