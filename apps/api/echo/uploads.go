package echoapi

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

// saveUpload stores a multipart file under the upload dir and returns the
// relative path to persist; "" when the field was not supplied. Contents
// are never inspected.
func saveUpload(ctx echo.Context, conf *core.Config, field string) (string, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return "", nil // absent or not a multipart request
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrapf(err, "opening upload %s", field)
	}
	defer src.Close()

	dir := filepath.Join(conf.UploadDir, "uploads")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return path.Join("/public/uploads", name), nil
}
