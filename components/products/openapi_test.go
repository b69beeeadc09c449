package products

import (
	"testing"
)

func TestOpenAPI_DescribesLookup(t *testing.T) {
	doc, err := OpenAPI("/admin", NewOptions(WithTypeParam("kind")))
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}

	item := doc.Paths.Find("/admin/bakery/get-products/")
	if item == nil || item.Get == nil {
		t.Fatalf("expected GET operation")
	}
	if item.Get.OperationID != OperationID {
		t.Fatalf("unexpected operation id %q", item.Get.OperationID)
	}
	param := item.Get.Parameters.GetByInAndName("query", "kind")
	if param == nil {
		t.Fatalf("expected kind query parameter")
	}
	if got := len(param.Schema.Value.Enum); got != 5 {
		t.Fatalf("expected 5 product types in enum, got %d", got)
	}
	if item.Get.Responses.Status(200) == nil {
		t.Fatalf("expected 200 response")
	}
}
