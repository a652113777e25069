package transport

import (
	"html"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	productDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"
	detailDateLayout  = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"
	catalogDateLayout = time.RFC3339
	reviewDateLayout  = "2006-01-02 15:04"
	orderDateLayout   = "2006-01-02 15:04"
	historyDateLayout = "2006-01-02 15:04:05"
	saleDayLayout     = "01-02"
	mediaURLPrefix    = "/media/"
	defaultAvatarAlt  = "User avatar"
)

type imageDTO struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type tagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productDTO struct {
	ID           int64      `json:"id"`
	Category     *int64     `json:"category"`
	Price        float64    `json:"price"`
	Count        int        `json:"count"`
	Date         string     `json:"date"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	FreeDelivery bool       `json:"freeDelivery"`
	Images       []imageDTO `json:"images"`
	Tags         []tagDTO   `json:"tags"`
	Reviews      int        `json:"reviews"`
	Rating       float64    `json:"rating"`
}

type productDetailDTO struct {
	ID              int64       `json:"id"`
	Category        *int64      `json:"category"`
	Price           float64     `json:"price"`
	OriginalPrice   float64     `json:"originalPrice"`
	SalePrice       *float64    `json:"salePrice"`
	Count           int         `json:"count"`
	Date            string      `json:"date"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	FullDescription string      `json:"fullDescription"`
	FreeDelivery    bool        `json:"freeDelivery"`
	Images          []imageDTO  `json:"images"`
	Tags            []string    `json:"tags"`
	Reviews         []reviewDTO `json:"reviews"`
	Rating          float64     `json:"rating"`
}

type reviewDTO struct {
	Author string `json:"author"`
	Email  string `json:"email"`
	Text   string `json:"text"`
	Rate   int    `json:"rate"`
	Date   string `json:"date"`
}

type categoryImageDTO struct {
	Src *string `json:"src"`
	Alt string  `json:"alt"`
}

type subcategoryDTO struct {
	ID    int64            `json:"id"`
	Title string           `json:"title"`
	Image categoryImageDTO `json:"image"`
}

type categoryDTO struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Image         categoryImageDTO `json:"image"`
	Subcategories []subcategoryDTO `json:"subcategories"`
}

type pageDTO[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

type saleDTO struct {
	ID        int64      `json:"id"`
	Price     float64    `json:"price"`
	SalePrice float64    `json:"salePrice"`
	DateFrom  string     `json:"dateFrom"`
	DateTo    string     `json:"dateTo"`
	Title     string     `json:"title"`
	Images    []imageDTO `json:"images"`
}

type orderDTO struct {
	ID           int64        `json:"id"`
	CreatedAt    string       `json:"createdAt"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	Phone        *string      `json:"phone"`
	DeliveryType string       `json:"deliveryType"`
	PaymentType  string       `json:"paymentType"`
	TotalCost    float64      `json:"totalCost"`
	Status       string       `json:"status"`
	City         string       `json:"city"`
	Address      string       `json:"address"`
	Products     []productDTO `json:"products"`
}

type historyDTO struct {
	ID           int64   `json:"id"`
	CreatedAt    string  `json:"createdAt"`
	DeliveryType string  `json:"deliveryType"`
	PaymentType  string  `json:"paymentType"`
	TotalCost    float64 `json:"totalCost"`
	Status       string  `json:"status"`
	PaymentError *string `json:"paymentError"`
}

type profileDTO struct {
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Avatar   *imageDTO `json:"avatar"`
}

type converter struct {
	loc   *time.Location
	today time.Time
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toImageDTOs(images []domain.Image) []imageDTO {
	return lo.Map(images, func(img domain.Image, _ int) imageDTO {
		return imageDTO{Src: img.Src, Alt: img.Alt}
	})
}

func toTagDTOs(tags []domain.Tag) []tagDTO {
	return lo.Map(tags, func(t domain.Tag, _ int) tagDTO {
		return tagDTO{ID: t.ID, Name: t.Name}
	})
}

// product renders a listing entry priced at today's price.
func (c converter) product(p domain.Product, dateLayout string) productDTO {
	return productDTO{
		ID:           p.ID,
		Category:     p.CategoryID,
		Price:        money(p.PriceAt(c.today)),
		Count:        p.Count,
		Date:         p.DateAdded.In(c.loc).Format(dateLayout),
		Title:        p.Title,
		Description:  p.Description,
		FreeDelivery: p.FreeDelivery,
		Images:       toImageDTOs(p.Images),
		Tags:         toTagDTOs(p.Tags),
		Reviews:      p.ReviewsCount,
		Rating:       p.Rating,
	}
}

func (c converter) products(products []domain.Product, dateLayout string) []productDTO {
	return lo.Map(products, func(p domain.Product, _ int) productDTO {
		return c.product(p, dateLayout)
	})
}

func (c converter) productDetail(p domain.Product, reviews []domain.Review) productDetailDTO {
	var salePrice *float64
	if price := p.ActiveSalePrice(c.today); price != nil {
		salePrice = lo.ToPtr(money(*price))
	}

	return productDetailDTO{
		ID:              p.ID,
		Category:        p.CategoryID,
		Price:           money(p.PriceAt(c.today)),
		OriginalPrice:   money(p.Price),
		SalePrice:       salePrice,
		Count:           p.Count,
		Date:            p.DateAdded.In(c.loc).Format(detailDateLayout),
		Title:           p.Title,
		Description:     p.Description,
		FullDescription: p.FullDescription,
		FreeDelivery:    p.FreeDelivery,
		Images:          toImageDTOs(p.Images),
		Tags:            lo.Map(p.Tags, func(t domain.Tag, _ int) string { return t.Name }),
		Reviews:         c.reviews(reviews),
		Rating:          p.Rating,
	}
}

func (c converter) reviews(reviews []domain.Review) []reviewDTO {
	return lo.Map(reviews, func(r domain.Review, _ int) reviewDTO {
		return reviewDTO{
			Author: r.Author,
			Email:  r.Email,
			Text:   r.Text,
			Rate:   r.Rate,
			Date:   r.Date.In(c.loc).Format(reviewDateLayout),
		}
	})
}

func toCategoryImage(c domain.Category) categoryImageDTO {
	return categoryImageDTO{Src: c.ImageSrc, Alt: c.Name}
}

func toCategoryDTOs(categories []domain.Category) []categoryDTO {
	return lo.Map(categories, func(c domain.Category, _ int) categoryDTO {
		return categoryDTO{
			ID:    c.ID,
			Title: c.Name,
			Image: toCategoryImage(c),
			Subcategories: lo.Map(c.Subcategories, func(sub domain.Category, _ int) subcategoryDTO {
				return subcategoryDTO{ID: sub.ID, Title: sub.Name, Image: toCategoryImage(sub)}
			}),
		}
	})
}

func toSaleDTOs(page domain.Page[domain.SaleOffer]) pageDTO[saleDTO] {
	return pageDTO[saleDTO]{
		Items: lo.Map(page.Items, func(s domain.SaleOffer, _ int) saleDTO {
			return saleDTO{
				ID:        s.ProductID,
				Price:     money(s.Price),
				SalePrice: money(s.SalePrice),
				DateFrom:  s.DateFrom.Format(saleDayLayout),
				DateTo:    s.DateTo.Format(saleDayLayout),
				Title:     s.Title,
				Images:    toImageDTOs(s.Images),
			}
		}),
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
	}
}

// banner mixes banner fields with the advertised product's listing fields.
func (c converter) banner(b domain.Banner) productDTO {
	dto := c.product(b.Product, productDateLayout)
	dto.ID = b.ID
	dto.Price = money(b.Product.Price)
	dto.Date = b.DateAdded.In(c.loc).Format(productDateLayout)
	dto.Title = b.Title
	dto.Description = b.Description
	dto.Images = []imageDTO{{Src: b.ImageSrc, Alt: b.Title}}
	return dto
}

func (c converter) basket(b domain.Basket) []productDTO {
	return lo.Map(b.Items, func(item domain.BasketItem, _ int) productDTO {
		dto := c.product(item.Product, productDateLayout)
		dto.Price = money(item.Price)
		dto.Count = item.Quantity
		return dto
	})
}

func (c converter) order(o domain.Order) orderDTO {
	products := make([]productDTO, 0, len(o.Items))
	for _, item := range o.Items {
		var dto productDTO
		if item.Product != nil {
			dto = c.product(*item.Product, productDateLayout)
		}
		dto.ID = item.ProductID
		dto.Price = money(item.Price.Amount)
		dto.Count = item.Quantity
		products = append(products, dto)
	}

	return orderDTO{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt.In(c.loc).Format(orderDateLayout),
		FullName:     o.FullName,
		Email:        o.Email,
		Phone:        o.Phone,
		DeliveryType: o.DeliveryType,
		PaymentType:  o.PaymentType,
		TotalCost:    money(o.TotalCost.Amount),
		Status:       string(o.Status),
		City:         o.City,
		Address:      o.Address,
		Products:     products,
	}
}

func (c converter) history(o domain.Order) historyDTO {
	return historyDTO{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt.In(c.loc).Format(historyDateLayout),
		DeliveryType: o.DeliveryType,
		PaymentType:  o.PaymentType,
		TotalCost:    money(o.TotalCost.Amount),
		Status:       o.Status.Display(),
		PaymentError: o.PaymentError,
	}
}

func toProfileDTO(p domain.Profile) profileDTO {
	dto := profileDTO{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    lo.FromPtr(p.Phone),
	}

	if p.AvatarPath != nil && *p.AvatarPath != "" {
		alt := defaultAvatarAlt
		if p.FullName != "" {
			alt = html.EscapeString(p.FullName)
		}
		dto.Avatar = &imageDTO{Src: mediaURLPrefix + *p.AvatarPath, Alt: alt}
	}

	return dto
}
