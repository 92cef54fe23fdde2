package p2p

import "time"

// Config holds the transport parameters. Listen and Upstream may each be
// empty or "." to disable that role; a node usually enables at least one.
type Config struct {
	// Listen is the address to accept peer streams on.
	Listen string `mapstructure:"listen"`

	// Upstream is the address of the peer to keep one outbound stream to,
	// used for hierarchical fan-out.
	Upstream string `mapstructure:"upstream"`

	// SendQueueSize bounds the per-connection outbound queue.
	SendQueueSize int `mapstructure:"send-queue-size"`

	// RateLimit bounds inbound messages per connection per RateInterval.
	RateLimit    int           `mapstructure:"rate-limit"`
	RateInterval time.Duration `mapstructure:"rate-interval"`

	// ReconnectInterval is the backoff between upstream dial attempts.
	ReconnectInterval time.Duration `mapstructure:"reconnect-interval"`
}

func DefaultConfig() Config {
	return Config{
		Listen:            ":7700",
		SendQueueSize:     512,
		RateLimit:         1000,
		RateInterval:      time.Second,
		ReconnectInterval: 5 * time.Second,
	}
}

// RoleDisabled reports whether an address value disables its role. The
// CLI uses "." as the explicit marker.
func RoleDisabled(addr string) bool {
	return addr == "" || addr == "."
}
