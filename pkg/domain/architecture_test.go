package domain

import (
	"archrepo/testutil"
	"testing"
)

// TestDomainHasNoImplementationImports keeps the domain layer free of
// internal packages and storage drivers.
func TestDomainHasNoImplementationImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.Any(testutil.InternalImportForbidden, testutil.StorageDriverImportForbidden),
		"pkg/domain must stay implementation free")
}
