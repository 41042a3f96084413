package catalog

// tokenResponse is the OAuth2 client-credentials grant reply. Only the
// access token is consumed.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type searchRequest struct {
	Keywords    string `json:"keywords"`
	RecordCount int    `json:"recordCount"`
}

// searchResponse covers the slice of the keyword-search reply we read;
// the real payload carries far more.
type searchResponse struct {
	Products []product `json:"Products"`
}

type product struct {
	Manufacturer  namedValue  `json:"Manufacturer"`
	ProductStatus statusValue `json:"ProductStatus"`
	Parameters    []parameter `json:"Parameters"`
}

type namedValue struct {
	Name string `json:"Name"`
}

type statusValue struct {
	Status string `json:"Status"`
}

type parameter struct {
	ParameterText string `json:"ParameterText"`
	ValueText     string `json:"ValueText"`
}
