package cart

import "storefront/internal/models"

// NoticeLevel is the tone of a Notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the user-facing message produced by a cart mutation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Store is what cart consumers depend on.
type Store interface {
	Cart() Cart
	AddToCart(product models.Product, quantity int) Notice
	RemoveFromCart(productID int) Notice
	ClearCart() Notice
	TotalPrice() float64
}

// Provider owns the cart of a single session together with its drawer state.
// It is not safe for concurrent use; callers serialise access per session.
type Provider struct {
	items Cart
	open  bool
}

var _ Store = (*Provider)(nil)

// NewProvider returns a provider with an empty cart and a closed drawer.
func NewProvider() *Provider {
	return &Provider{items: Cart{}}
}

// Cart returns a copy of the current lines.
func (p *Provider) Cart() Cart {
	out := make(Cart, len(p.items))
	copy(out, p.items)
	return out
}

// AddToCart merges the product into the cart and opens the drawer.
func (p *Provider) AddToCart(product models.Product, quantity int) Notice {
	p.items = AddItem(p.items, product, quantity)
	p.open = true
	return Notice{Level: NoticeSuccess, Message: "Product added to cart!"}
}

func (p *Provider) RemoveFromCart(productID int) Notice {
	p.items = RemoveItem(p.items, productID)
	return Notice{Level: NoticeError, Message: "Product removed from cart."}
}

func (p *Provider) ClearCart() Notice {
	p.items = Clear(p.items)
	return Notice{Level: NoticeSuccess, Message: "The cart has been emptied."}
}

// TotalPrice is Total over the current lines.
func (p *Provider) TotalPrice() float64 {
	return Total(p.items)
}

// Len reports the number of distinct lines.
func (p *Provider) Len() int { return len(p.items) }

func (p *Provider) IsOpen() bool { return p.open }
func (p *Provider) Open()        { p.open = true }
func (p *Provider) Close()       { p.open = false }
func (p *Provider) Toggle()      { p.open = !p.open }
