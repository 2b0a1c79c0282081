package handler

import "github.com/labstack/echo/v4"

// AdminSubject is the token subject used for admin-key logins.  Admins
// are not students; there is exactly one shared admin identity.
const AdminSubject = "admin"

func subjectFrom(c echo.Context) string {
	s, _ := c.Get("student_id").(string)
	return s
}

func roleFrom(c echo.Context) string {
	r, _ := c.Get("role").(string)
	return r
}
