package email

// PreviewData contains sample template data for local preview and tests,
// keyed by template then by template variable.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserFirstName": "Ana",
	},
}
