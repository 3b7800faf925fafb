package services

// ServiceContainer holds all service facades handed to the HTTP layer.
type ServiceContainer struct {
	Receipt    ReceiptSvcFacade
	Client     ClientSvcFacade
	User       UserSvcFacade
	Auth       AuthSvcFacade
	Billing    BillingSvcFacade
	Reporting  ReportingSvcFacade
	Export     ExportSvcFacade
	Preference PreferenceSvcFacade
	Feed       FeedSvcFacade
}
