package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Field names shared by the forms and their renderers.
const (
	FieldBranch          = "branch"
	FieldProductType     = "product_type"
	FieldProductChoice   = "product_choice"
	FieldQuantity        = "quantity"
	FieldTransactionType = "transaction_type"
)

const (
	msgRequired       = "This field is required."
	msgSelectProduct  = "Please select a product."
	msgInvalidProduct = "Invalid selection."
	msgNumber         = "Enter a number."
	msgWholeNumber    = "Enter a whole number."
	msgNonNegative    = "Ensure this value is greater than or equal to 0."
	msgPositive       = "Ensure this value is greater than or equal to 1."
)

func msgInvalidChoice(value string) string {
	return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value)
}

// InventoryForm is the raw submission of the inventory form.
type InventoryForm struct {
	Branch        string `json:"branch"`
	ProductType   string `json:"product_type"`
	ProductChoice string `json:"product_choice"`
	Quantity      string `json:"quantity"`
}

// TransactionForm is the raw submission of the stock transaction form.
type TransactionForm struct {
	Branch          string `json:"branch"`
	ProductType     string `json:"product_type"`
	ProductChoice   string `json:"product_choice"`
	Quantity        string `json:"quantity"`
	TransactionType string `json:"transaction_type"`
}

// productSelection is the validated branch, type and product of a form.
type productSelection struct {
	branch  Branch
	product catalog.Product
}

func (s *Service) cleanSelection(ctx context.Context, verrs ValidationErrors, rawBranch, rawType, rawChoice string) (productSelection, error) {
	var sel productSelection

	rawBranch = strings.TrimSpace(rawBranch)
	switch id, err := strconv.ParseUint(rawBranch, 10, 64); {
	case rawBranch == "":
		verrs.Add(FieldBranch, msgRequired)
	case err != nil:
		verrs.Add(FieldBranch, msgInvalidChoice(rawBranch))
	default:
		branch, err := s.branches.Branch(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			verrs.Add(FieldBranch, msgInvalidChoice(rawBranch))
		case err != nil:
			return sel, fmt.Errorf("inventory: resolve branch: %w", err)
		default:
			sel.branch = branch
		}
	}

	productType, known := catalog.ParseProductType(rawType)
	switch {
	case strings.TrimSpace(rawType) == "":
		verrs.Add(FieldProductType, msgRequired)
	case !known:
		verrs.Add(FieldProductType, msgInvalidChoice(strings.TrimSpace(rawType)))
	}

	rawChoice = strings.TrimSpace(rawChoice)
	if rawChoice == "" {
		verrs.Add(FieldProductChoice, msgSelectProduct)
		return sel, nil
	}
	id, err := strconv.ParseUint(rawChoice, 10, 64)
	if err != nil {
		verrs.Add(FieldProductChoice, msgInvalidProduct)
		return sel, nil
	}
	if !known {
		return sel, nil
	}
	product, err := s.catalog.Product(ctx, productType, id)
	switch {
	case errors.Is(err, ErrNotFound):
		verrs.Add(FieldProductChoice, msgInvalidChoice(rawChoice))
	case err != nil:
		return sel, fmt.Errorf("inventory: resolve product: %w", err)
	default:
		sel.product = product
	}
	return sel, nil
}

func cleanStockLevel(verrs ValidationErrors, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verrs.Add(FieldQuantity, msgRequired)
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		verrs.Add(FieldQuantity, msgNumber)
		return 0
	}
	if value < 0 {
		verrs.Add(FieldQuantity, msgNonNegative)
	}
	return value
}

func cleanMovement(verrs ValidationErrors, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verrs.Add(FieldQuantity, msgRequired)
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		verrs.Add(FieldQuantity, msgWholeNumber)
		return 0
	}
	if value < 1 {
		verrs.Add(FieldQuantity, msgPositive)
	}
	return value
}

func cleanTransactionType(verrs ValidationErrors, raw string) TransactionType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verrs.Add(FieldTransactionType, msgRequired)
		return ""
	}
	for _, t := range TransactionTypes() {
		if string(t) == raw {
			return t
		}
	}
	verrs.Add(FieldTransactionType, msgInvalidChoice(raw))
	return ""
}
