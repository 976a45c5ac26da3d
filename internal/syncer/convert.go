package syncer

import (
	"time"

	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/osonkassa"
)

// The POS API is not consistent about timestamp precision.
var saleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSaleDate(value string) time.Time {
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func convertRemains(item osonkassa.RemainsItem, now time.Time) entities.InventoryRecord {
	return entities.InventoryRecord{
		ExternalID:        item.ID,
		BranchID:          item.BranchID,
		Branch:            item.Branch,
		ProductID:         item.ProductID,
		BatchID:           item.BatchID,
		Code:              item.Code,
		Product:           item.Product,
		Manufacturer:      item.Manufacturer,
		Country:           item.Country,
		InternationalName: item.InternationalName,
		PharmGroup:        item.PharmGroup,
		Category:          item.Category,
		Unit:              item.Unit,
		PieceCount:        item.PieceCount,
		Barcode:           item.Barcode,
		Quantity:          item.Quantity,
		Quantities: entities.PackQuantity{
			Units:  item.Quantities.Units,
			Pieces: item.Quantities.Pieces,
		},
		BookedQuantity: item.BookedQuantity,
		BookedQuantities: entities.PackQuantity{
			Units:  item.BookedQuantities.Units,
			Pieces: item.BookedQuantities.Pieces,
		},
		BuyPrice:         item.BuyPrice,
		SalePrice:        item.SalePrice,
		VAT:              item.VAT,
		Markup:           item.Markup,
		BuyAmount:        item.BuyAmount,
		SaleAmount:       item.SaleAmount,
		Series:           item.Series,
		ShelfLife:        item.ShelfLife,
		Supplier:         item.Supplier,
		SupplyDate:       item.SupplyDate,
		Location:         item.Location,
		StorageCondition: item.StorageCondition,
		DataHash:         InventoryHash(item),
		LastUpdated:      now,
	}
}

func convertSaleHeader(header osonkassa.SaleHeader, now time.Time) entities.SaleRecord {
	record := entities.SaleRecord{
		ExternalID:         header.ID,
		Branch:             header.Branch,
		SaleType:           header.SaleType,
		SaleTypeString:     header.SaleTypeString,
		Number:             header.Number,
		Date:               parseSaleDate(header.Date),
		Status:             header.Status,
		ShiftNumber:        header.ShiftNumber,
		CustomerName:       header.CustomerName,
		HasFiscalReceipt:   header.HasFiscalReceipt,
		Notes:              header.Notes,
		DoctorCode:         header.Notes,
		ItemsCount:         header.ItemsCount,
		BuyAmount:          header.BuyAmount,
		DiscountAmount:     header.DiscountAmount,
		DiscountPercentage: header.DiscountPercentage,
		SaleAmount:         header.SaleAmount,
		SoldAmount:         header.SoldAmount,
		VATAmount:          header.VATAmount,
		PaymentCash:        header.PaymentCash,
		PaymentBankCard:    header.PaymentBankCard,
		PaymentCredit:      header.PaymentCredit,
		PaymentUzcard:      header.PaymentUzcard,
		PaymentHumo:        header.PaymentHumo,
		PaymentOnline:      header.PaymentOnline,
		PaymentPayme:       header.PaymentPayme,
		PaymentClick:       header.PaymentClick,
		PaymentUzum:        header.PaymentUzum,
		PaymentInsurance:   header.PaymentInsurance,
		CreatedBy:          header.CreatedBy,
		ModifiedBy:         header.ModifiedBy,
		IsDeleted:          header.IsDeleted,
		DataHash:           SaleHash(header),
		LastUpdated:        now,
	}

	if header.ModifiedAt != "" {
		if t := parseSaleDate(header.ModifiedAt); !t.IsZero() {
			record.ModifiedAt = &t
		}
	}
	return record
}

func convertSaleItems(items []osonkassa.SaleItemData) []entities.SaleItem {
	converted := make([]entities.SaleItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, entities.SaleItem{
			ExternalID:     item.ID,
			ProductID:      item.ProductID,
			Product:        item.Product,
			Unit:           item.Unit,
			Series:         item.Series,
			Quantity:       item.Quantity,
			Price:          item.Price,
			DiscountAmount: item.DiscountAmount,
			Amount:         item.Amount,
		})
	}
	return converted
}
