// Package assets contains static files embedded into the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed emails/*.tmpl
var embedded embed.FS

// EmailFS contains the email templates, rooted at the emails directory.
var EmailFS = func() fs.FS {
	sub, err := fs.Sub(embedded, "emails")
	if err != nil {
		panic("failed to subtree email FS: " + err.Error())
	}
	return sub
}()
