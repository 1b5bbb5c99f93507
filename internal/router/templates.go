package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"postboard/internal/handlers"
	"postboard/internal/models"
	"postboard/internal/storage"
	"postboard/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// views maps template names used by handlers to files under views/.
var views = []string{
	"posts/index.html",
	"posts/follow.html",
	"posts/detail.html",
	"posts/create.html",
	"posts/delete_confirm.html",
	"posts/delete_done.html",
	"groups/group.html",
	"groups/create.html",
	"users/profile.html",
	"auth/login.html",
	"auth/signup.html",
	"auth/logged_out.html",
	"misc/400.html",
	"misc/404.html",
	"misc/500.html",
}

func funcMap(images storage.ImageStore) template.FuncMap {
	return template.FuncMap{
		"imageURL":   images.URL,
		"renderText": utils.RenderText,
		"excerpt":    utils.Excerpt,
		"profileURL": handlers.ProfileURL,
		"postURL": func(p models.Post) string {
			return handlers.PostURL(&p)
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"timeAgo": timeAgo,
	}
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

// LoadTemplates parses every view together with the layout and includes.
// fsys must contain a templates/ directory.
func LoadTemplates(fsys fs.FS, images storage.ImageStore) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	fm := funcMap(images)

	shared := []string{"templates/layouts/*.html", "templates/includes/*.html"}
	for _, view := range views {
		patterns := append(append([]string{}, shared...), path.Join("templates/views", view))
		tmpl, err := template.New("base.html").Funcs(fm).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", view, err)
		}
		if !strings.Contains(tmpl.DefinedTemplates(), `"content"`) {
			return nil, fmt.Errorf("template %s does not define content", view)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}
