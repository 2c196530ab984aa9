// Package validators checks client input before it reaches the managers
package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"unicode/utf8"
)

var (
	ErrNoFile          = errors.New("No se recibió ningún archivo")
	ErrFileNameTooLong = errors.New("El nombre del archivo es demasiado largo")
	ErrFileNameInvalid = errors.New("El nombre del archivo no es válido")
)

// Most filesystems and object store UIs choke on longer names
const maxFileNameSize = 255

// FileValidator checks the multipart header of an upload and opens it. The
// returned status code is meant for the response when err isn't nil.
func FileValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if !utf8.ValidString(fh.Filename) {
		return http.StatusBadRequest, nil, ErrFileNameInvalid
	}

	if utf8.RuneCountInString(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	return http.StatusOK, f, nil
}
