package cart

import (
	cartdto "github.com/angelmondragon/jewelry-miniapp/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/jewelry-miniapp/internal/cart"
)

func newCartResponse(snap cartsvc.Snapshot) cartdto.Cart {
	items := make([]cartdto.CartLine, 0, len(snap.Items))
	for _, line := range snap.Items {
		row := cartdto.CartLine{
			ID:       line.ID,
			Local:    line.ID.IsLocal(),
			Product:  line.Product,
			Quantity: line.Quantity,
			Size:     line.Size,
			Subtotal: line.Subtotal(),
		}
		if img, ok := line.Product.MainImage(); ok {
			row.MainImage = img.Image
		}
		items = append(items, row)
	}

	return cartdto.Cart{
		Items:      items,
		Total:      snap.Total,
		ItemsCount: snap.ItemsCount,
		IsOpen:     snap.IsOpen,
		IsSyncing:  snap.IsSyncing,
		Revision:   snap.Revision,
	}
}
