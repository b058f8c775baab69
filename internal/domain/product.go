package domain

const (
	CategoryMen   = "Men"
	CategoryWomen = "Women"
	CategoryKids  = "Kids"

	SubCategoryTopWear    = "Top-Wear"
	SubCategoryBottomWear = "Bottom-Wear"
	SubCategoryWinterWear = "Winter-Wear"
)

// MaxImages is the number of image slots a product carries.
const MaxImages = 4

var Categories = []string{CategoryMen, CategoryWomen, CategoryKids}

var SubCategories = []string{SubCategoryTopWear, SubCategoryBottomWear, SubCategoryWinterWear}

var Sizes = []string{"S", "M", "L", "XL"}

// Product mirrors the catalog document as the storefront backend returns it.
// The identifier and image URLs are opaque to the dashboard.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Sizes       []string `json:"sizes"`
	BestSeller  bool     `json:"bestSeller"`
	Images      []string `json:"image"`
	Date        int64    `json:"date"`
}

func ValidSize(size string) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
