package extract

import "github.com/v0xg/formmap/internal/form"

// formReadySelector signals that a page has rendered its form controls
const formReadySelector = "form, input, select, textarea"

// kind groups the selector tables; selects resolve to select or multiselect per control
type kind int

const (
	kindText kind = iota
	kindTextArea
	kindSelect
	kindCheckbox
	kindRadio
	kindDate
	kindFile
)

// passes lists every extraction pass in processing order
var passes = []struct {
	kind      kind
	category  form.Category
	selectors []string
}{
	{kindText, form.Text, []string{
		`input[type="text"]`,
		`input[type="email"]`,
		`input[type="tel"]`,
		`input[type="number"]`,
		`input[type="url"]`,
		`input[type="password"]`,
		`input[data-automation-id*="textInputBox"]`,
		`input[data-automation-id*="textInput"]`,
		`input[data-automation-id*="numberInput"]`,
	}},
	{kindTextArea, form.TextArea, []string{
		`textarea`,
		`[data-automation-id*="textArea"]`,
		`[data-automation-id*="richTextEditor"]`,
	}},
	{kindSelect, form.Select, []string{
		`select`,
		`[data-automation-id*="dropdown"]`,
		`[data-automation-id*="searchDropDown"]`,
		`[data-automation-id*="selectWidget"]`,
		`[data-automation-id*="comboBox"]`,
		`[role="combobox"]`,
	}},
	{kindCheckbox, form.Checkbox, []string{
		`input[type="checkbox"]`,
		`[data-automation-id*="checkboxPanel"]`,
		`[data-automation-id*="checkbox"]`,
		`[role="checkbox"]`,
	}},
	{kindRadio, form.Radio, []string{
		`input[type="radio"]`,
		`[data-automation-id*="radioButton"]`,
		`[data-automation-id*="radio"]`,
		`[role="radio"]`,
	}},
	{kindDate, form.Date, []string{
		`input[type="date"]`,
		`[data-automation-id*="datePicker"]`,
		`[data-automation-id*="dateInput"]`,
		`[data-automation-id*="dateWidget"]`,
	}},
	{kindFile, form.File, []string{
		`input[type="file"]`,
		`[data-automation-id*="fileUpload"]`,
		`[data-automation-id*="attachmentWidget"]`,
	}},
}
