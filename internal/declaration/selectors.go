// internal/declaration/selectors.go
// Element ids of the remote declaration form. The ids are generated by the
// remote ASP.NET page and change only when the vendor redeploys, at which
// point this file is the single place to update.
package declaration

import "github.com/rakanhl/declare-cli/internal/ui"

const declPrefix = "ContentPlaceHolder1_ctl01_ucDeclaration_"

var (
	// Login page.
	loginUser    = ui.ByID("ContentPlaceHolder1_txtUserId")
	loginPass    = ui.ByID("ContentPlaceHolder1_txtPwd")
	loginButton  = ui.ByID("ContentPlaceHolder1_btnLogIn")
	searchItemID = ui.ByID("ContentPlaceHolder1_txtItemId") // also the post-login landing element

	// Record lookup.
	searchOK   = ui.ByID("ContentPlaceHolder1_btnOk")
	detailGrid = ui.ByID("ContentPlaceHolder1_grdItems")

	// Routing header.
	partnerCountry = ui.ByID("ContentPlaceHolder1_txtPartnerCountry")
	partnerPost    = ui.ByID("ContentPlaceHolder1_txtPartnerPost")
	mailClass      = ui.ByID("ContentPlaceHolder1_cbMailClass")
	handlingClass  = ui.ByID(declPrefix + "cbHandlingClass")

	// Sender block.
	senderName      = ui.ByID(declPrefix + "txtSenderName")
	senderAddress1  = ui.ByID(declPrefix + "txtSenderAddressLine1")
	senderAddress2  = ui.ByID(declPrefix + "txtSenderAddressLine2")
	senderCity      = ui.ByID(declPrefix + "txtSenderCity")
	senderState     = ui.ByID(declPrefix + "txtSenderState")
	senderCountry   = ui.ByID(declPrefix + "txtSenderCountry")
	senderTelephone = ui.ByID(declPrefix + "txtSenderTelephone")
	natureType      = ui.ByID(declPrefix + "txtNatureType")

	// Recipient block.
	recipientName      = ui.ByID(declPrefix + "txtRecipientName")
	recipientAddress1  = ui.ByID(declPrefix + "txtRecipientAddressLine1")
	recipientAddress2  = ui.ByID(declPrefix + "txtRecipientAddressLine2")
	recipientZIP       = ui.ByID(declPrefix + "txtRecipientZIP")
	recipientCity      = ui.ByID(declPrefix + "txtRecipientCity")
	recipientState     = ui.ByID(declPrefix + "txtRecipientState")
	recipientCountry   = ui.ByID(declPrefix + "txtRecipientCountry")
	recipientEmail     = ui.ByID(declPrefix + "txtRecipientEmail")
	recipientTelephone = ui.ByID(declPrefix + "txtRecipientTelephone")

	// Line-item block (first repeater row).
	itemQuantity    = ui.ByID(declPrefix + "rptCP_txtCPNumber_0")
	itemDescription = ui.ByID(declPrefix + "rptCP_txtCPDesc_0")
	itemNetWeight   = ui.ByID(declPrefix + "rptCP_txtCPNetWeight_0")
	itemValue       = ui.ByID(declPrefix + "rptCP_txtCPAmount_0")
	itemCurrency    = ui.ByID(declPrefix + "rptCP_txtCPCurrency_0")

	// Totals and postage.
	grossWeight     = ui.ByID(declPrefix + "ucGrossWeight_txtField")
	postageAmount   = ui.ByID(declPrefix + "ucPostage_txtField")
	postageCurrency = ui.ByID(declPrefix + "txtPostageCurrency")

	// Submission.
	actionSelect = ui.ByID("ContentPlaceHolder1_cbNewAction")
	storeButton  = ui.ByID("ContentPlaceHolder1_btnStore")
)

// Visible option texts of the remote action and handling selects.
const (
	handlingClassNormal = "N (Normal)"
	actionStoreFinal    = "2 (Armazenar final (transferência automática))"
	actionEliminate     = "8 (Eliminar)"
)
