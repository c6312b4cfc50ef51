package errcodes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryOf_Ranges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want Category
	}{
		{999, CategoryUnknown},
		{0, CategoryUnknown},
		{-5, CategoryUnknown},
		{1000, CategoryValidation},
		{1001, CategoryValidation},
		{1999, CategoryValidation},
		{2000, CategoryAuthentication},
		{2004, CategoryAuthentication},
		{3003, CategoryNotFound},
		{3999, CategoryNotFound},
		{4001, CategoryBusiness},
		{4999, CategoryBusiness},
		{5000, CategoryServer},
		{9999, CategoryServer},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategoryOf(tc.code), "code %d", tc.code)
	}
}

func TestCategoryOf_StableForRegisteredCodes(t *testing.T) {
	t.Parallel()

	for _, d := range All() {
		first := CategoryOf(d.Code)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, CategoryOf(d.Code))
		}
		assert.Equal(t, d.Category, first, "catalog entry %s", d.Name)
	}
}

func TestPredicates_AreDisjoint(t *testing.T) {
	t.Parallel()

	for code := Code(900); code <= 6000; code += 7 {
		n := 0
		for _, p := range []func(Code) bool{IsValidationError, IsAuthError, IsNotFoundCode, IsBusinessError, IsServerError} {
			if p(code) {
				n++
			}
		}
		if code < 1000 {
			assert.Zero(t, n, "code %d", code)
		} else {
			assert.Equal(t, 1, n, "code %d", code)
		}
	}
}

func TestIsRegistered(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRegistered(ValidationFailed))
	assert.True(t, IsRegistered(DatabaseConnectionFailed))
	assert.False(t, IsRegistered(9999))
	assert.False(t, IsRegistered(1999))
	assert.False(t, IsRegistered(0))
}

func TestConstantsAreRegistered(t *testing.T) {
	t.Parallel()

	all := []Code{
		ValidationFailed, InvalidInput, MissingRequiredField, InvalidFormat, BadRequest,
		Unauthorized, InvalidToken, TokenExpired, Forbidden,
		ResourceNotFound, UserNotFound, ProductNotFound, OrderNotFound, OccasionNotFound, RouteNotFound,
		InsufficientStock, PaymentFailed, OrderNotProcessable, InvalidStateTransition,
		DatabaseConstraintViolation, ResourceConflict, RateLimitExceeded,
		InternalServerError, DatabaseError, ExternalServiceError, ServiceUnavailable, DatabaseConnectionFailed,
	}
	for _, c := range all {
		assert.True(t, IsRegistered(c), "constant %d missing from codes.yaml", c)
	}
	assert.Len(t, All(), len(all))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	d, ok := Lookup(InsufficientStock)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_STOCK", d.Name)
	assert.Equal(t, CategoryBusiness, d.Category)

	_, ok = Lookup(4242)
	assert.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := All()
	require.NotEmpty(t, a)
	a[0].Name = "PATCHED"
	assert.NotEqual(t, "PATCHED", All()[0].Name)
	assert.Equal(t, "VALIDATION_FAILED", All()[0].Name)
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	auth := ByCategory(CategoryAuthentication)
	require.Len(t, auth, 4)
	for _, d := range auth {
		assert.True(t, IsAuthError(d.Code))
	}
	assert.Empty(t, ByCategory(CategoryUnknown))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CategoryValidation))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CategoryAuthentication))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CategoryNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CategoryBusiness))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CategoryServer))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CategoryUnknown))
}

func TestParseCatalog_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":          "codes: []",
		"wrong range":    "codes:\n  - {code: 2001, name: X, category: validation}",
		"duplicate code": "codes:\n  - {code: 1001, name: A, category: validation}\n  - {code: 1001, name: B, category: validation}",
		"duplicate name": "codes:\n  - {code: 1001, name: A, category: validation}\n  - {code: 1002, name: A, category: validation}",
		"not yaml":       "codes: [",
	}
	for name, doc := range cases {
		_, err := parseCatalog([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestCategory_Valid(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		assert.True(t, c.Valid())
	}
	assert.False(t, CategoryUnknown.Valid())
	assert.False(t, Category("teapot").Valid())
}
