package spec

// Domain model for a tera documentation file. Values are built once by the
// loader and treated as read-only afterwards.

type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	PATCH   Method = "PATCH"
	OPTIONS Method = "OPTIONS"
	HEAD    Method = "HEAD"
)

// Methods lists the accepted HTTP verbs in a stable order.
var Methods = []Method{GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD}

func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthAPIKey AuthType = "apikey"
)

func (a AuthType) Valid() bool {
	switch a {
	case AuthBearer, AuthBasic, AuthAPIKey:
		return true
	}
	return false
}

type Schema struct {
	API       API
	Endpoints []Endpoint
}

type API struct {
	Name        string
	Version     string
	Description *string
	BaseURL     string
	Auth        *Auth
}

type Auth struct {
	Type AuthType
}

// Field is shared by parameters and body fields. MinLength and MaxLength
// only carry meaning for string values.
type Field struct {
	Name        string
	Example     Value
	Required    bool
	Description *string
	MinLength   *int
	MaxLength   *int
}

type Params struct {
	Path   []Field
	Query  []Field
	Header []Field
}

type SuccessResponse struct {
	Status      int
	Description string
	Example     Value
}

// ErrorResponse.Example is the null Value when the file omits it.
type ErrorResponse struct {
	Status      int
	Message     string
	Description *string
	Example     Value
}

type Responses struct {
	Success SuccessResponse
	Errors  []ErrorResponse
}

type Endpoint struct {
	Path         string
	Method       Method
	Summary      string
	Tag          string
	Description  *string
	AuthRequired bool
	Params       *Params
	Body         []Field
	Responses    Responses
}

// ID identifies an endpoint for diagnostics, e.g. "GET /users/{id}".
func (e Endpoint) ID() string { return string(e.Method) + " " + e.Path }
