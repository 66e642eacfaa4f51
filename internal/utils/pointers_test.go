package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestInt64Ptr(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := utils.Int64Ptr(" 42 ")
		require.NotNil(t, v)
		require.Equal(t, int64(42), *v)
	})

	t.Run("blank", func(t *testing.T) {
		require.Nil(t, utils.Int64Ptr(""))
	})

	t.Run("garbage", func(t *testing.T) {
		require.Nil(t, utils.Int64Ptr("12abc"))
	})
}

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}
