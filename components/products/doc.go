// Package products provides the product lookup endpoint used by dependent
// product fields. It answers GET and HEAD requests carrying a product_type
// query parameter with the products of that type as JSON:
//
//	{"products": [{"id": 1, "name": "White Loaf"}]}
//
// Unknown or empty types yield an empty list with status 200.
package products
