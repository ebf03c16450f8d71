package models

type Package string

const (
	PackageBasic   Package = "basic"
	PackagePremium Package = "premium"
	PackageDeluxe  Package = "deluxe"
)

type PackageInfo struct {
	Code        Package `json:"code"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Catalogue is the fixed set of service tiers with their prices.
type Catalogue struct {
	items []PackageInfo
}

func NewCatalogue(basic, premium, deluxe float64) Catalogue {
	return Catalogue{items: []PackageInfo{
		{Code: PackageBasic, Name: "Basic", Price: basic, Description: "Venue styling, cake table and standard games"},
		{Code: PackagePremium, Name: "Premium", Price: premium, Description: "Basic plus photo booth, catering for 30 and host"},
		{Code: PackageDeluxe, Name: "Deluxe", Price: deluxe, Description: "Premium plus full catering, photographer and custom theme"},
	}}
}

func (c Catalogue) List() []PackageInfo {
	out := make([]PackageInfo, len(c.items))
	copy(out, c.items)
	return out
}

func (c Catalogue) Price(p Package) (float64, bool) {
	for _, it := range c.items {
		if it.Code == p {
			return it.Price, true
		}
	}
	return 0, false
}
