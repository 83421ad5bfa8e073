package parsers

import (
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gst-filing-service/internal/models"
	"gst-filing-service/internal/recon"
	"gst-filing-service/internal/states"
	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// purchaseHeaders are the alias sets that identify the purchase register
// columns. Registers come from accounting exports with no fixed layout.
var purchaseHeaders = headerAliases{
	"gstin":         {"GSTIN", "SUPPLIER GSTIN", "VENDOR GSTN"},
	"invoice_no":    {"INVOICE NO", "BILL NUMBER", "DOCUMENT NO"},
	"invoice_date":  {"INVOICE DATE", "DATE"},
	"taxable_value": {"TAXABLE VALUE", "TOTAL PRICE"},
}

// purchaseOptionalHeaders are columns many registers simply do not carry.
var purchaseOptionalHeaders = headerAliases{
	"place_of_supply": {"PLACE OF SUPPLY", "POS"},
}

// gstr2bHeaders identify the portal's B2B sheet columns.
var gstr2bHeaders = headerAliases{
	"gstin":           {"gstin of supplier"},
	"invoice_no":      {"invoice number"},
	"invoice_date":    {"invoice date"},
	"taxable_value":   {"taxable value"},
	"place_of_supply": {"place of supply"},
}

// ReadPurchaseRegister reads the buyer's purchase register and
// aggregates line items to invoice level: rows sharing GSTIN, invoice
// number, date and place of supply are summed. Rows missing any part of
// the identity are skipped.
func ReadPurchaseRegister(path string, registry *states.Registry) ([]recon.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, path, "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidData, path, "failed to read sheet rows", err)
	}

	dataStart, colMap, err := detectHeaderRow(rows, purchaseHeaders, purchaseOptionalHeaders, path)
	if err != nil {
		return nil, err
	}
	log := logger.GetGlobalLogger().WithComponent("parsers")
	log.WithFields(logger.Fields{"file": path, "header_row": dataStart}).Info("Purchase register header detected")

	type key struct {
		gstin     string
		invoiceNo string
		date      string
		pos       string
	}
	aggregated := make(map[key]*recon.Row)
	var order []key

	for _, raw := range rows[dataStart:] {
		gstin := models.SafeString(cellAt(raw, colMap["gstin"]))
		invoiceNo := models.SafeString(cellAt(raw, colMap["invoice_no"]))
		invoiceDate, dateOK := models.ParseDate(cellAt(raw, colMap["invoice_date"]))
		taxable, taxableOK := models.ToDecimal(cellAt(raw, colMap["taxable_value"]))

		// A missing or unresolvable place of supply degrades to a blank
		// scope; it is not part of the invoice identity.
		pos := ""
		if posIdx, ok := colMap["place_of_supply"]; ok {
			pos, _ = registry.Resolve(models.SafeString(cellAt(raw, posIdx)))
		}

		if gstin == "" || invoiceNo == "" || !dateOK {
			continue
		}
		if !taxableOK {
			taxable = decimal.Zero
		}

		k := key{gstin: gstin, invoiceNo: invoiceNo, date: models.FormatDate(invoiceDate), pos: pos}
		entry, ok := aggregated[k]
		if !ok {
			entry = &recon.Row{
				GSTIN:       gstin,
				InvoiceNo:   invoiceNo,
				InvoiceDate: invoiceDate,
				POSState:    pos,
			}
			aggregated[k] = entry
			order = append(order, k)
		}
		entry.TaxableValue = decimal.NullDecimal{
			Decimal: entry.TaxableValue.Decimal.Add(taxable),
			Valid:   true,
		}
	}

	result := make([]recon.Row, 0, len(order))
	for _, k := range order {
		entry := aggregated[k]
		entry.TaxableValue.Decimal = models.RoundMoney(entry.TaxableValue.Decimal)
		result = append(result, *entry)
	}
	log.WithFields(logger.Fields{"file": path, "invoices": len(result)}).Info("Purchase register aggregated")
	return result, nil
}

// ReadGSTR2B reads the B2B sheet of a GSTR-2B statement at invoice
// level. A missing B2B sheet is fatal.
func ReadGSTR2B(path string, registry *states.Registry) ([]recon.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer f.Close()

	const sheetName = "B2B"
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return nil, apperrors.ParseError(apperrors.CodeMissingSheet, path, sheetName, err)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidData, path, "failed to read B2B sheet", err)
	}

	dataStart, colMap, err := detectHeaderRow(rows, gstr2bHeaders, nil, path)
	if err != nil {
		return nil, err
	}
	log := logger.GetGlobalLogger().WithComponent("parsers")
	log.WithFields(logger.Fields{"file": path, "header_row": dataStart}).Info("GSTR-2B header detected")

	var result []recon.Row
	for _, raw := range rows[dataStart:] {
		gstin := models.SafeString(cellAt(raw, colMap["gstin"]))
		invoiceNo := models.SafeString(cellAt(raw, colMap["invoice_no"]))
		// Unresolvable place of supply keeps the row with a blank scope.
		pos, _ := registry.Resolve(models.SafeString(cellAt(raw, colMap["place_of_supply"])))
		if gstin == "" || invoiceNo == "" {
			continue
		}

		invoiceDate, _ := models.ParseDate(cellAt(raw, colMap["invoice_date"]))
		result = append(result, recon.Row{
			GSTIN:        gstin,
			InvoiceNo:    invoiceNo,
			InvoiceDate:  invoiceDate,
			TaxableValue: models.ToNullDecimal(cellAt(raw, colMap["taxable_value"])),
			POSState:     pos,
		})
	}

	log.WithFields(logger.Fields{"file": path, "rows": len(result)}).Info("GSTR-2B statement loaded")
	return result, nil
}
