package v1

// Version of the REST API
const Version = "v1"

// BasePath is the route prefix every v1 endpoint is registered under
const BasePath = "/api/" + Version + "/cd"
