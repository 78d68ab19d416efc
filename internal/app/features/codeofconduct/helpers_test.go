package codeofconduct_test

import (
	"testing"

	"github.com/dalemusser/flowhub/internal/app/system/upload"
	"github.com/dalemusser/flowhub/internal/testutil"
)

func fileOf(t *testing.T, text string) *upload.File {
	t.Helper()
	return upload.FromBytes("c.docx", testutil.BuildDocx(t, testutil.Para(text), nil))
}
