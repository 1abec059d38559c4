package sql

import (
	"embed"
	_ "embed"
)

// Migrations holds the schema DDL applied by `ccam migrate`.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/select_active_version.sql
var SelectActiveVersion string

//go:embed queries/select_codes.sql
var SelectCodes string

//go:embed queries/select_official_associations.sql
var SelectOfficialAssociations string

//go:embed queries/select_incompatibilities.sql
var SelectIncompatibilities string

//go:embed queries/select_frequent_associations.sql
var SelectFrequentAssociations string
