package adapters

import "golang.org/x/net/html"

// GenericAdapter keeps the whole page body. It handles any source.
type GenericAdapter struct{}

func NewGenericAdapter() *GenericAdapter { return &GenericAdapter{} }

func (GenericAdapter) Name() string { return "generic" }

func (GenericAdapter) CanHandle(string, string) bool { return true }

func (GenericAdapter) ContentRoot(doc *html.Node) *html.Node { return bodyOf(doc) }
