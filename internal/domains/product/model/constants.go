package model

import "time"

const (
	// PageSize of the public listing
	PageSize = 8

	// MaxExportRows caps a single Excel export
	MaxExportRows = 10000

	ListCacheTTL    = 5 * time.Minute
	ListCachePrefix = "products:list"

	ExportSheetName = "Products"
)
