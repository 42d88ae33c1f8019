package rest

// Resource is the address of an indexed page: the URI its content can be
// fetched from and the breadcrumb trail of its ancestors.
type Resource struct {
	uri         string
	breadcrumbs string
}

// NewResource creates a Resource. Both values are stored verbatim.
func NewResource(uri, breadcrumbs string) Resource {
	return Resource{uri: uri, breadcrumbs: breadcrumbs}
}

// URI returns the absolute URI of the page.
func (r Resource) URI() string {
	return r.uri
}

// Breadcrumbs returns the slash-joined ancestor names, e.g. "/stories".
func (r Resource) Breadcrumbs() string {
	return r.breadcrumbs
}
