package constant

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	HistoryKey      = "martins_history"
	AgeConfirmedKey = "martins_is_adult"

	DefaultHistoryCapacity = 100
)
