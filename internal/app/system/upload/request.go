package upload

import (
	"errors"
	"net/http"
)

// multipartSlack covers form boundaries and headers around the file.
const multipartSlack = 1 << 20

// FromRequest pulls the multipart file field out of req. A request with
// no such field yields a nil File so the caller's validation reports it.
// cleanup releases the form's temp files and is never nil.
func (r Rules) FromRequest(w http.ResponseWriter, req *http.Request, field string) (*File, func(), error) {
	noop := func() {}
	req.Body = http.MaxBytesReader(w, req.Body, r.MaxBytes+multipartSlack)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, noop, r.tooLarge()
		}
		return nil, noop, nil
	}

	cleanup := func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}
	file, hdr, err := req.FormFile(field)
	if err != nil {
		return nil, cleanup, nil
	}
	return &File{Name: hdr.Filename, Size: hdr.Size, Content: file}, func() {
		_ = file.Close()
		cleanup()
	}, nil
}
