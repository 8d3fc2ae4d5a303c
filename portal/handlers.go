package portal

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/catalog"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
)

const contentTypeHTML = "text/html; charset=utf-8"

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><title>{{.Title}} — AgriLink</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Form}}
<form method="post" action="{{.Form}}">
<input name="username" placeholder="username" autocomplete="username">
<input name="password" type="password" placeholder="password" autocomplete="current-password">
{{if .RoleField}}
<select name="role">
<option value="farmer">Farmer</option>
<option value="supplier">Supplier</option>
<option value="consumer">Consumer</option>
</select>
<input name="email" placeholder="email">
<input name="phone" placeholder="phone">
{{end}}
<button type="submit">Submit</button>
</form>
{{end}}
{{range .Products}}<p>{{.Name}} — {{.Price}} ({{.Category}})</p>{{end}}
{{if .User}}<p>Signed in as {{.User.Username}} ({{.User.Role}})</p>
<form method="post" action="/logout"><button type="submit">Log out</button></form>{{end}}
</body>
</html>`))

type pageData struct {
	Title     string
	Error     string
	Form      string
	RoleField bool
	Products  []catalog.Product
	User      *users.User
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("rendering page")
	}
}

func (s *Server) landingHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{Title: "AgriLink Marketplace", User: s.sessions.CurrentUser()})
}

func (s *Server) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	if user := s.sessions.CurrentUser(); user != nil {
		http.Redirect(w, r, user.Role.HomePath(), http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, pageData{Title: "Log in", Form: users.LoginPath})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Title: "Log in", Form: users.LoginPath, Error: "invalid form"})
		return
	}

	user, err := s.sessions.Login(r.Context(), accounts.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     users.RoleType(r.PostFormValue("role")),
	})
	if err != nil {
		s.render(w, http.StatusUnauthorized, pageData{Title: "Log in", Form: users.LoginPath, Error: presentable(err)})
		return
	}
	http.Redirect(w, r, user.Role.HomePath(), http.StatusSeeOther)
}

func (s *Server) registerPageHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{Title: "Register", Form: "/register", RoleField: true})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Title: "Register", Form: "/register", RoleField: true, Error: "invalid form"})
		return
	}

	user, err := s.sessions.Register(r.Context(), accounts.Registration{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
		Role:     users.RoleType(r.PostFormValue("role")),
	})
	if err != nil {
		s.render(w, http.StatusBadRequest, pageData{Title: "Register", Form: "/register", RoleField: true, Error: presentable(err)})
		return
	}
	http.Redirect(w, r, user.Role.HomePath(), http.StatusSeeOther)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context())
	http.Redirect(w, r, users.LoginPath, http.StatusSeeOther)
}

func (s *Server) dashboardHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pageData{Title: title, User: s.sessions.CurrentUser()})
	}
}

func (s *Server) productsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context(), catalog.ListOptions{})
	if err != nil {
		s.render(w, http.StatusBadGateway, pageData{Title: "Products", Error: presentable(err)})
		return
	}
	s.render(w, http.StatusOK, pageData{Title: "Products", Products: products, User: s.sessions.CurrentUser()})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// presentable extracts a user-facing message from a backend error.
func presentable(err error) string {
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	for field, problems := range apiErr.Fields {
		if len(problems) > 0 {
			return field + ": " + problems[0]
		}
	}
	return apiErr.Status
}
