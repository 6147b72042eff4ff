package catalog

import (
	"strings"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type seedCategory struct {
	Name          string
	Subcategories []string
}

type seedObjective struct {
	Name     string
	Category repo.ObjectiveCategory
}

var seedIndustries = []seedCategory{
	{"SaaS/Software", []string{"B2B", "B2C", "Enterprise", "Developer Tools"}},
	{"Marketplace/Platform", []string{"B2B", "B2C", "P2P", "Aggregator"}},
	{"Consumer/D2C", []string{"Subscription", "E-commerce", "App-based"}},
	{"Hardware/IoT", []string{"Consumer Devices", "Industrial", "Wearables"}},
	{"DeepTech/AI", []string{"ML/AI", "Blockchain", "Robotics", "Biotech"}},
	{"FinTech", []string{"Payments", "Lending", "InsurTech", "WealthTech"}},
	{"HealthTech", []string{"Telemedicine", "MedTech", "Wellness"}},
	{"EdTech", []string{"K-12", "Higher Ed", "Corporate Training"}},
	{"FoodTech/AgriTech", []string{"Delivery", "Farm-to-table", "FoodScience"}},
	{"Services", []string{"Agency", "Consulting", "Freelance Platform"}},
}

var seedObjectives = []seedObjective{
	{"Fundraising strategy", repo.ObjectiveFundraising},
	{"Investor introductions", repo.ObjectiveFundraising},
	{"Pitch deck review", repo.ObjectiveFundraising},
	{"Product development", repo.ObjectiveOperations},
	{"Hiring & team building", repo.ObjectiveOperations},
	{"Go-to-market strategy", repo.ObjectiveOperations},
	{"Legal & compliance", repo.ObjectiveOperations},
}

var slugReplacer = strings.NewReplacer("/", "-", " ", "-")

// CategorySlug turns "SaaS/Software" into "saas-software".
func CategorySlug(name string) string {
	return slugReplacer.Replace(strings.ToLower(name))
}

// SubcategorySlug prefixes the subcategory slug with its category's.
func SubcategorySlug(categorySlug, name string) string {
	return categorySlug + "-" + slugReplacer.Replace(strings.ToLower(name))
}

// ObjectiveSlug turns "Hiring & team building" into "hiring-and-team-building".
func ObjectiveSlug(name string) string {
	return strings.NewReplacer("&", "and", " ", "-").Replace(strings.ToLower(name))
}
