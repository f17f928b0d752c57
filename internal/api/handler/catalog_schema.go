package handler

type productRequest struct {
	Title         string `json:"title"                          validate:"required,min=3"`
	Description   string `json:"description"                    validate:"required,min=10"`
	Price         int64  `json:"price"                          validate:"required,gte=1"`
	Category      string `json:"category"                       validate:"required,min=3,max=20"`
	Weight        string `json:"weight"                         validate:"omitempty,oneof=0.5kg 1kg 1.5kg 2kg 2.5kg 3kg 4kg 5kg 10kg 15kg 20kg"`
	Image         string `json:"image"                          validate:"required,url"`
	ImagePublicID string `json:"cloudinary_public_id,omitempty"`
}

type uploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
}
