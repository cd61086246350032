// Package web はサーバーサイドで描画するテンプレートと静的ファイルを埋め込みます。
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

// Templates は全テンプレートを読み込みます。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Install はテンプレートと /static を router に登録します。
func Install(router *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(sub))
	return nil
}
