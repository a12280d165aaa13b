package woo

// ==========================================
// DTO: 用于接收来源平台 (WooCommerce/Dokan) REST API 的原始 JSON
// ==========================================

// RefDTO 商品上挂的分类/标签引用
type RefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryDTO 商品分类
type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// TagDTO 商品标签
type TagDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// AttributeDTO 全局属性注册表条目 (products/attributes)
type AttributeDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Type    string `json:"type"`
	OrderBy string `json:"order_by"`
}

// TermDTO 全局属性的取值 (products/attributes/{id}/terms)
type TermDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ImageDTO 商品图片
type ImageDTO struct {
	ID       int64  `json:"id"`
	Src      string `json:"src"`
	Name     string `json:"name"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
}

// DimensionsDTO 尺寸（来源侧全部是字符串）
type DimensionsDTO struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// ProductAttrDTO 商品上声明的属性
// ID > 0 表示引用全局属性注册表，ID == 0 是商品内联的自定义属性
type ProductAttrDTO struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// StoreRefDTO Dokan 在商品上内嵌的店铺引用
type StoreRefDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ShopName string `json:"shop_name"`
	URL      string `json:"url"`
}

// ProductDTO 单个商品 (products)
type ProductDTO struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Permalink        string           `json:"permalink"`
	Type             string           `json:"type"` // simple / variable
	Status           string           `json:"status"`
	SKU              string           `json:"sku"`
	Price            string           `json:"price"`
	RegularPrice     string           `json:"regular_price"`
	SalePrice        string           `json:"sale_price"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	StockStatus      string           `json:"stock_status"`
	StockQuantity    *int             `json:"stock_quantity"`
	Weight           string           `json:"weight"`
	Dimensions       DimensionsDTO    `json:"dimensions"`
	Categories       []RefDTO         `json:"categories"`
	Tags             []RefDTO         `json:"tags"`
	Images           []ImageDTO       `json:"images"`
	Attributes       []ProductAttrDTO `json:"attributes"`
	Variations       []int64          `json:"variations"`
	Store            *StoreRefDTO     `json:"store"`
	DateModifiedGmt  string           `json:"date_modified_gmt"`
}

// VariationAttrDTO 变体上的属性取值对
type VariationAttrDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// VariationDTO 商品变体 (products/{id}/variations)
type VariationDTO struct {
	ID            int64              `json:"id"`
	SKU           string             `json:"sku"`
	Price         string             `json:"price"`
	RegularPrice  string             `json:"regular_price"`
	SalePrice     string             `json:"sale_price"`
	Status        string             `json:"status"`
	StockStatus   string             `json:"stock_status"`
	StockQuantity *int               `json:"stock_quantity"`
	Weight        string             `json:"weight"`
	Dimensions    DimensionsDTO      `json:"dimensions"`
	Attributes    []VariationAttrDTO `json:"attributes"`
}

// CommissionDTO Dokan 店铺佣金设置
// Type 为 percentage 时 Value 才是百分比，flat/fixed 是绝对值
type CommissionDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// StoreDTO Dokan 店铺/卖家 (stores)
type StoreDTO struct {
	ID         int64             `json:"id"`
	StoreName  string            `json:"store_name"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	ShopURL    string            `json:"shop_url"`
	Enabled    bool              `json:"enabled"`
	Registered string            `json:"registered"`
	Address    map[string]string `json:"address"`
	Commission *CommissionDTO    `json:"commission"`
}

// RenderedDTO WordPress 的 {"rendered": "..."} 包装
type RenderedDTO struct {
	Rendered string `json:"rendered"`
}

// PostDTO 博客文章 (posts)
type PostDTO struct {
	ID         int64       `json:"id"`
	DateGmt    string      `json:"date_gmt"`
	Slug       string      `json:"slug"`
	Status     string      `json:"status"`
	Link       string      `json:"link"`
	Title      RenderedDTO `json:"title"`
	Content    RenderedDTO `json:"content"`
	Excerpt    RenderedDTO `json:"excerpt"`
	Author     int64       `json:"author"`
	Categories []int64     `json:"categories"`
	Tags       []int64     `json:"tags"`
}

// WPTermDTO 博客分类/标签 (categories, tags)
type WPTermDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent"`
	Count  int    `json:"count"`
}
