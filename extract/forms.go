package extract

import (
	"context"

	"github.com/use-agent/spindle/driver"
	"github.com/use-agent/spindle/models"
)

const formsJS = `() => {
	const forms = [];
	document.querySelectorAll('form').forEach((form, index) => {
		const fields = [];
		form.querySelectorAll('input, select, textarea').forEach(el => {
			const type = el.tagName === 'INPUT' ? (el.getAttribute('type') || 'text') : el.tagName.toLowerCase();
			if (type === 'submit' || type === 'button' || type === 'hidden') return;
			fields.push({
				type: type,
				name: el.getAttribute('name') || '',
				id: el.getAttribute('id') || '',
				placeholder: el.getAttribute('placeholder') || '',
				required: el.hasAttribute('required'),
				value: el.getAttribute('value') || ''
			});
		});
		const buttons = [];
		form.querySelectorAll('button, input[type=submit], input[type=button]').forEach(el => {
			buttons.push({
				type: el.getAttribute('type') || (el.tagName === 'BUTTON' ? 'submit' : ''),
				text: (el.textContent || '').trim(),
				value: el.getAttribute('value') || '',
				name: el.getAttribute('name') || '',
				id: el.getAttribute('id') || ''
			});
		});
		forms.push({
			index: index,
			id: form.getAttribute('id') || '',
			name: form.getAttribute('name') || '',
			action: form.getAttribute('action') || '',
			method: (form.getAttribute('method') || 'get').toLowerCase(),
			enctype: form.getAttribute('enctype') || '',
			fields: fields,
			buttons: buttons
		});
	});
	return {
		forms: forms,
		input_fields: document.querySelectorAll('input, select, textarea').length,
		buttons: document.querySelectorAll('button, input[type=submit], input[type=button]').length
	};
}`

type formsRaw struct {
	Forms       []*models.Form `json:"forms"`
	InputFields int            `json:"input_fields"`
	Buttons     int            `json:"buttons"`
}

// Forms extracts every form on the page along with page-wide input and
// button counts.
func Forms(ctx context.Context, page driver.Page, params Params) ([]*models.Form, models.FormStats, error) {
	var raw formsRaw
	if err := page.Eval(ctx, formsJS, &raw); err != nil {
		return nil, models.FormStats{}, err
	}
	stats := models.FormStats{
		TotalForms:  len(raw.Forms),
		InputFields: raw.InputFields,
		Buttons:     raw.Buttons,
	}
	return raw.Forms, stats, nil
}
