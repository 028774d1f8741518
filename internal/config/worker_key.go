package config

type WorkerKeyStruct struct {
	PersistResultsQueue    string
	PersistViolationsQueue string
	PersistAnswersQueue    string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue:    "persist_results_queue",
	PersistViolationsQueue: "persist_violations_queue",
	PersistAnswersQueue:    "persist_answers_queue",
}

// Queues lists every worker queue, used for depth reporting.
func (w *WorkerKeyStruct) Queues() []string {
	return []string{w.PersistResultsQueue, w.PersistViolationsQueue, w.PersistAnswersQueue}
}
