// Package upstream is the HTTP client for the helpline case-management
// API: endpoint catalogue, the three request header profiles, token
// acquisition, login, and the proxied console operations.
package upstream

import "strings"

// Endpoints is the catalogue of upstream API routes. All console
// operations live under the hpcyber-users service prefix.
type Endpoints struct {
	base string
}

// NewEndpoints builds the catalogue for the given API origin.
func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{base: strings.TrimRight(baseURL, "/") + "/hpcyber-users/api"}
}

func (e Endpoints) Token() string          { return e.base + "/user/v1/token" }
func (e Endpoints) Login() string          { return e.base + "/user/v1/login" }
func (e Endpoints) Register() string       { return e.base + "/user/v1/register" }
func (e Endpoints) RefreshToken() string   { return e.base + "/user/v1/refresh-token" }
func (e Endpoints) Logout() string         { return e.base + "/user/v1/logout" }
func (e Endpoints) ForgotPassword() string { return e.base + "/user/v1/forgot-password" }
func (e Endpoints) ResetPassword() string { return e.base + "/user/v1/reset-password" }

func (e Endpoints) UserProfile() string   { return e.base + "/user/user-profile" }
func (e Endpoints) UpdateProfile() string { return e.base + "/user/v1/update-profile" }
func (e Endpoints) Users() string         { return e.base + "/user/v1/users" }

func (e Endpoints) DeleteUser(id string) string { return e.base + "/user/v1/delete/" + id }

func (e Endpoints) Contacts() string       { return e.base + "/contact/v1/list" }
func (e Endpoints) CreateContact() string { return e.base + "/contact/v1/create" }
func (e Endpoints) UpdateContact() string { return e.base + "/contact/v1/update" }
func (e Endpoints) DeleteContact(id string) string { return e.base + "/contact/v1/delete/" + id }
func (e Endpoints) ContactDetails(id string) string { return e.base + "/contact/v1/details/" + id }

func (e Endpoints) Incidents() string      { return e.base + "/incident/v1/list" }
func (e Endpoints) CreateIncident() string { return e.base + "/incident/v1/create" }
func (e Endpoints) UpdateIncident() string { return e.base + "/incident/v1/update" }
func (e Endpoints) DeleteIncident(id string) string { return e.base + "/incident/v1/delete/" + id }
func (e Endpoints) IncidentDetails(id string) string { return e.base + "/incident/v1/details/" + id }

func (e Endpoints) Threats() string      { return e.base + "/threat/v1/list" }
func (e Endpoints) CreateThreat() string { return e.base + "/threat/v1/create" }
func (e Endpoints) UpdateThreat() string { return e.base + "/threat/v1/update" }
func (e Endpoints) DeleteThreat(id string) string { return e.base + "/threat/v1/delete/" + id }

func (e Endpoints) Reports() string        { return e.base + "/report/v1/list" }
func (e Endpoints) GenerateReport() string { return e.base + "/report/v1/generate" }
func (e Endpoints) ReportDetails(id string) string { return e.base + "/report/v1/details/" + id }

func (e Endpoints) States() string { return e.base + "/master/v1/states" }
func (e Endpoints) Roles() string { return e.base + "/master/v1/roles" }

// Districts is optionally filtered by state.
func (e Endpoints) Districts(stateID string) string {
	if stateID == "" {
		return e.base + "/master/v1/districts"
	}
	return e.base + "/master/v1/districts?stateId=" + stateID
}
