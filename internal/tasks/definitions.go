package tasks

// DefineTasks registers all available task handlers.
func DefineTasks() {
	RegisterHandler(MonthlyBillingTask.TaskID(), MonthlyBillingTask.HandleExecution)
	RegisterHandler(SingleTenantAccrualTask.TaskID(), SingleTenantAccrualTask.HandleExecution)
	RegisterHandler(SendEmailBatchTask.TaskID(), SendEmailBatchTask.HandleExecution)
	RegisterHandler(OverdueReminderTask.TaskID(), OverdueReminderTask.HandleExecution)
	RegisterHandler(ExpireAnnouncementsTask.TaskID(), ExpireAnnouncementsTask.HandleExecution)
}
