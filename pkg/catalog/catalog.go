// Package catalog lists the services offered through the inquiry form.
package catalog

// Category is a top-level service offered on the site with its sub-services.
type Category struct {
	Name        string   `json:"name"`
	SubServices []string `json:"subServices"`
}

// Categories lists the service categories a visitor can pick in the inquiry form, in display order.
var Categories = []Category{
	{
		Name: "Electrical & Engineering",
		SubServices: []string{
			"Professional Electrical Contractor",
			"Industrial Wiring & Panel Installation",
			"AMC & Maintenance Support",
			"Electrical System Design",
			"Power Distribution",
		},
	},
	{
		Name: "IT Services",
		SubServices: []string{
			"Custom Software Development",
			"Network Infrastructure",
			"Cloud Solutions & IT Support",
			"Website Development",
			"Mobile App Development",
		},
	},
	{
		Name: "Minerals & Chemicals",
		SubServices: []string{
			"Bulk Supply with Quality Assurance",
			"Construction & Manufacturing Materials",
			"Timely Delivery Across Jharkhand",
			"Industrial Chemicals",
			"Raw Materials Supply",
		},
	},
	{
		Name: "Bricks & Manufacturing",
		SubServices: []string{
			"Paver Blocks",
			"Precast Compound Walls",
			"Precast Boundary Walls",
			"Custom Brick Manufacturing",
			"Construction Materials",
		},
	},
	{
		Name: "Digital Marketing",
		SubServices: []string{
			"SEO & Content Marketing",
			"Social Media Management",
			"PPC & Conversion Optimization",
			"Brand Strategy",
			"Website Analytics",
		},
	},
	{
		Name: "Taxation Services",
		SubServices: []string{
			"Income Tax Filing (ITR)",
			"TDS Returns & Compliance",
			"Financial Audit Support",
			"GST Registration & Filing",
			"Business Registration",
		},
	},
}

// IsService reports whether name is a catalog category.
func IsService(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SubServices returns the sub-services of a category, or nil for unknown categories.
func SubServices(service string) []string {
	for _, c := range Categories {
		if c.Name == service {
			return c.SubServices
		}
	}
	return nil
}

// IsSubServiceOf reports whether sub belongs to service.
func IsSubServiceOf(service, sub string) bool {
	for _, s := range SubServices(service) {
		if s == sub {
			return true
		}
	}
	return false
}
