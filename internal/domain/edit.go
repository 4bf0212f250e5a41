package domain

// EditState is the lifecycle of a record shown in a detail page.
type EditState string

const (
	EditStateViewing    EditState = "VIEWING"
	EditStateEditing    EditState = "EDITING"
	EditStateSubmitting EditState = "SUBMITTING"
)
