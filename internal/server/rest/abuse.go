package rest

import (
	"html/template"
	"net/http"
)

var removedPage = template.Must(template.New("removed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="robots" content="noindex, nofollow">
    <title>Link Removed - Abuse Detected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
               background: #7e22ce; min-height: 100vh; display: flex; align-items: center;
               justify-content: center; margin: 0; padding: 20px; }
        .container { background: white; border-radius: 12px; padding: 2rem 3rem; max-width: 700px; }
        h1 { color: #dc2626; margin-top: 0; }
        p { color: #374151; line-height: 1.6; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Link Removed</h1>
        <p>This short link was reported for abuse and has been disabled. Its original destination is no longer available.</p>
        <p>The operators of {{.Domain}} cannot read the destinations of links, so removal only happens after a report.</p>
        <p>If you believe this was a mistake, contact <a href="mailto:abuse@{{.Domain}}">abuse@{{.Domain}}</a>.</p>
    </div>
</body>
</html>
`))

func (s *Server) writeRemovedPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := removedPage.Execute(w, struct{ Domain string }{s.domain}); err != nil {
		s.logger.Error(r.Context(), "render removal page", "error", err.Error())
	}
}
