package catalog

// DefaultProducts is the starter catalog loaded by `bakery seed`. IDs are
// unique per product type, matching how each type keeps its own table.
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Type: ProductTypeBread, Name: "White Loaf", FlourKG: 0.5, YeastKG: 0.01, EnhancerKG: 0.005, WaterCost: "0.50", ElectricityCost: "1.20", SellingPrice: "10.00"},
		{ID: 2, Type: ProductTypeBread, Name: "Whole Wheat Loaf", FlourKG: 0.55, YeastKG: 0.012, EnhancerKG: 0.004, WaterCost: "0.55", ElectricityCost: "1.30", SellingPrice: "12.00"},
		{ID: 3, Type: ProductTypeBread, Name: "Dabo Roll", FlourKG: 0.1, YeastKG: 0.002, EnhancerKG: 0.001, WaterCost: "0.10", ElectricityCost: "0.20", SellingPrice: "3.00"},
		{ID: 1, Type: ProductTypeInjera, Name: "Teff Injera", FlourKG: 0.3, YeastKG: 0.005, WaterCost: "0.40", ElectricityCost: "0.90", SellingPrice: "8.00"},
		{ID: 2, Type: ProductTypeInjera, Name: "Mixed Injera", FlourKG: 0.3, YeastKG: 0.004, WaterCost: "0.40", ElectricityCost: "0.90", SellingPrice: "6.50"},
		{ID: 1, Type: ProductTypeFlour, Name: "Wheat Flour", Brand: "Addis Mills", CostPerKG: "65.00"},
		{ID: 2, Type: ProductTypeFlour, Name: "Teff Flour", Brand: "Ethio Grain", CostPerKG: "120.00"},
		{ID: 1, Type: ProductTypeYeast, Name: "Instant Dry Yeast", Brand: "Saf-Instant", CostPerKG: "400.00"},
		{ID: 1, Type: ProductTypeEnhancer, Name: "Bread Improver", Brand: "Puratos", CostPerKG: "350.00"},
	}
}
