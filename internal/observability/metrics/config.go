package metrics

// Config labels every instrument with the owning service and environment.
type Config struct {
	ServiceName string
	Environment string
}
