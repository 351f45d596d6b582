package bot

const (
	welcomeMessage = `⛽ Fuel receipt tracker

Send me a photo of a fuel receipt and I will record it.

Commands:
/total [year] - monthly totals
/list - every receipt, newest first
/pdf [year] - PDF report
/export [year] - Excel workbook
/reset - delete all receipts
/help - this message`

	analysingMessage        = "📸 Photo received, analysing..."
	extractionFailedMessage = "❌ I could not read this receipt. Please try again with a clearer photo."
	storageFailedMessage    = "⚠️ The receipt store is unavailable right now. Nothing was changed."
	genericFailureMessage   = "⚠️ Something went wrong. Please try again."
	resetDoneMessage        = "🗑 All receipts deleted."
	unknownCommandMessage   = "I did not understand that. Send a receipt photo or /help for the list of commands."
	yearUsageFormat         = "Usage: /%s [year], for example /%s 2025"
)
