package printing

// Identity holds the store-addressable components of a printing.
type Identity struct {
	Name            string
	NameSlug        string // first face only
	FullNameSlug    string // every face, hyphen-joined
	SetName         string
	SetNameSlug     string
	SetCode         string
	CollectorNumber string
	Variant         Variant
	PromoPack       bool
}

// NewIdentity derives the identity of a printing.
func NewIdentity(p Printing) Identity {
	return Identity{
		Name:            p.Name,
		NameSlug:        FirstFaceSlug(p.Name),
		FullNameSlug:    JoinedFacesSlug(p.Name),
		SetName:         p.SetName,
		SetNameSlug:     Slugify(p.SetName),
		SetCode:         p.SetCode,
		CollectorNumber: p.CollectorNumber,
		Variant:         DetectVariant(p),
		PromoPack:       p.IsPromoPack(),
	}
}
