// Package mqtt delivers user notifications over an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mjarreta/parkd/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "parkd-notifier"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "parkd/notify"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes notifications to a per-user topic under the
// configured prefix. Delivery is best-effort: publish failures are
// logged and dropped, never surfaced to the caller.
type Notifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewNotifier connects to the MQTT broker.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New("mqtt_notifier")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Notifier{cli: c, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// Notify publishes the message to <prefix>/<userID>.
func (n *Notifier) Notify(userID, message string) {
	payload, err := json.Marshal(struct {
		UserID    string `json:"user_id"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}{
		UserID:    userID,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		n.log.Errorf("encode notification: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/%s", n.prefix, userID)
	token := n.cli.Publish(topic, n.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		n.log.Errorf("publish to %s: %v", topic, err)
		return
	}
	n.log.Debugf("notified %s on %s", userID, topic)
}

// Disconnect gracefully closes the MQTT connection.
func (n *Notifier) Disconnect() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
