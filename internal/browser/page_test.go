// internal/browser/page_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakanhl/declare-cli/internal/ui"
)

func TestConditionExprPresentChecksVisibility(t *testing.T) {
	expr, err := conditionExpr(ui.ByID("ContentPlaceHolder1_txtItemId"), ui.Present)
	require.NoError(t, err)
	assert.Contains(t, expr, `getElementById("ContentPlaceHolder1_txtItemId")`)
	assert.Contains(t, expr, "offsetParent")
}

func TestConditionExprClickableChecksDisabled(t *testing.T) {
	expr, err := conditionExpr(ui.ByID("ContentPlaceHolder1_btnOk"), ui.Clickable)
	require.NoError(t, err)
	assert.Contains(t, expr, "!e.disabled")
	assert.Contains(t, expr, "offsetParent")
}

func TestConditionExprAbsentMatchesMissingElement(t *testing.T) {
	expr, err := conditionExpr(ui.ByID("ContentPlaceHolder1_grdItems"), ui.Absent)
	require.NoError(t, err)
	assert.Contains(t, expr, `getElementById("ContentPlaceHolder1_grdItems")`)
	assert.Contains(t, expr, "===null")
}

func TestConditionExprLocatesButtonsByText(t *testing.T) {
	for _, cond := range []ui.Condition{ui.Present, ui.Clickable, ui.Absent} {
		expr, err := conditionExpr(ui.ByButtonText("Confirmar e continuar"), cond)
		require.NoError(t, err)
		assert.Contains(t, expr, `querySelectorAll("button")`)
		assert.Contains(t, expr, `"Confirmar e continuar"`)
	}
}

func TestConditionExprRejectsUnknownCondition(t *testing.T) {
	_, err := conditionExpr(ui.ByID("x"), ui.Condition("hovering"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown wait condition")
}
