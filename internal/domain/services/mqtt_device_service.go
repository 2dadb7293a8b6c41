package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gymcore-http-service/internal/domain/models"
	"gymcore-http-service/internal/infrastructure/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterfaceMQTTDeviceService 定义MQTT终端通道服务接口
type InterfaceMQTTDeviceService interface {
	Connect() error
	Disconnect()
	SubscribeToTopics() error
	RemoteUnlock(deviceSerial, operator string) error
	NotifySyncPending(deviceSerial string) error
}

// MQTTDeviceService 门禁终端的MQTT通道实现。
// 终端通过心跳主题上报在线状态，服务端通过控制主题下发远程开门与同步通知。
type MQTTDeviceService struct {
	DB             *gorm.DB
	Config         *config.Config
	Devices        InterfaceDeviceService
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex // 保护IsConnected字段的读写
	PublishMutex   sync.Mutex   // 用于保护MQTT消息发布
	TopicHandlers  map[string]mqtt.MessageHandler
}

// 主题常量
const (
	// 终端心跳上报主题
	TopicDeviceHeartbeat = "gym_access/heartbeat"

	// 终端控制主题（远程开门、同步通知）
	TopicDeviceControl = "gym_access/controller/device"

	// 系统消息主题
	TopicSystemMessage = "gym_access/system"
)

// 消息结构体定义
type (
	// HeartbeatMessage 终端心跳消息
	HeartbeatMessage struct {
		DeviceSerial    string `json:"device_serial"`
		FirmwareVersion string `json:"firmware_version,omitempty"`
		Timestamp       int64  `json:"timestamp"`
	}

	// DeviceControlMessage 终端控制消息
	DeviceControlMessage struct {
		Action       string `json:"action"` // unlock / sync_pending
		DeviceSerial string `json:"device_serial"`
		Operator     string `json:"operator,omitempty"`
		RelayDelay   int    `json:"relay_delay,omitempty"`
		Timestamp    int64  `json:"timestamp"`
	}

	// SystemMessage 系统消息
	SystemMessage struct {
		Type      string      `json:"type"`
		Level     string      `json:"level"` // info/warning/error
		Message   string      `json:"message"`
		Data      interface{} `json:"data,omitempty"`
		Timestamp int64       `json:"timestamp"`
	}
)

// NewMQTTDeviceService 创建一个新的MQTT终端服务
func NewMQTTDeviceService(db *gorm.DB, cfg *config.Config, deviceService InterfaceDeviceService) InterfaceMQTTDeviceService {
	service := &MQTTDeviceService{
		DB:          db,
		Config:      cfg,
		Devices:     deviceService,
		IsConnected: false,
	}

	// 设置MQTT客户端
	service.setupMQTTClient()

	// 设置主题处理程序
	service.setupTopicHandlers()

	return service
}

// setupMQTTClient 设置MQTT客户端
func (s *MQTTDeviceService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s-%d", s.Config.MQTTClientID, uuid.New().String()[:8], time.Now().UnixNano()))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)

	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		log.Printf("[MQTT] 收到未处理的消息: topic=%s", msg.Topic())
	})

	// 添加用户名和密码
	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	// 添加TLS配置，支持SSL连接
	if strings.HasPrefix(s.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(s.Config.MQTTBrokerURL, "tls://") || s.Config.MQTTSSLEnabled {
		log.Println("[MQTT] 使用TLS连接")
		tlsConfig := &tls.Config{
			InsecureSkipVerify: true, // 默认跳过验证，如有CA证书则使用
		}
		if s.Config.MQTTCACertPath != "" {
			log.Printf("[MQTT] 使用CA证书: %s", s.Config.MQTTCACertPath)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	// 设置连接丢失回调
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("[MQTT] 连接丢失: %v", err)
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
	})

	// 设置连接建立回调
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("[MQTT] 成功连接到", s.Config.MQTTBrokerURL)
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()

		// 订阅主题
		if err := s.SubscribeToTopics(); err != nil {
			log.Printf("[MQTT] 订阅主题失败: %v", err)
		}
	})

	// 设置重连回调
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		log.Println("[MQTT] 正在尝试重连...")
	})

	// 创建客户端
	s.Client = mqtt.NewClient(opts)
}

// setupTopicHandlers 设置主题处理程序
func (s *MQTTDeviceService) setupTopicHandlers() {
	s.TopicHandlers = map[string]mqtt.MessageHandler{
		TopicDeviceHeartbeat: s.handleHeartbeat,
		TopicSystemMessage:   s.handleSystemMessage,
	}
}

// Connect 连接到MQTT服务器，带有重试机制
func (s *MQTTDeviceService) Connect() error {
	log.Printf("[MQTT] 正在连接到 %s...", s.Config.MQTTBrokerURL)

	// 加锁，确保同一时间只有一个连接尝试
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	// 如果已连接，直接返回
	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if isConnected {
		return nil
	}

	// 添加最大重试次数和指数退避策略
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			s.connectedMutex.Lock()
			s.IsConnected = true
			s.connectedMutex.Unlock()
			log.Printf("[MQTT] 成功连接到 %s", s.Config.MQTTBrokerURL)
			return nil
		}

		err = token.Error()
		backoffTime := time.Duration(1<<uint(i)) * time.Second // 指数退避: 1s, 2s, 4s, 8s, 16s
		log.Printf("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, err, backoffTime)
		time.Sleep(backoffTime)
	}

	return fmt.Errorf("[MQTT] 连接失败，已尝试 %d 次: %v", maxRetries, err)
}

// Disconnect 断开与MQTT服务器的连接
func (s *MQTTDeviceService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

// SubscribeToTopics 订阅相关主题
func (s *MQTTDeviceService) SubscribeToTopics() error {
	// 使用QoS 1确保消息至少被传递一次
	qos := byte(1)

	for topic, handler := range s.TopicHandlers {
		if token := s.Client.Subscribe(topic, qos, handler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("订阅主题失败 [%s]: %v", topic, token.Error())
		}
		log.Printf("[MQTT] 已订阅主题: %s", topic)
	}
	return nil
}

// RemoteUnlock 远程开门。
// 前台或店长后台触发，按终端配置的继电器时长开门。
func (s *MQTTDeviceService) RemoteUnlock(deviceSerial, operator string) error {
	device, err := s.Devices.GetDeviceBySerial(deviceSerial)
	if err != nil {
		return err
	}
	if device.Status != models.DeviceStatusOnline {
		return fmt.Errorf("终端 %s 不在线，无法远程开门", deviceSerial)
	}

	msg := DeviceControlMessage{
		Action:       "unlock",
		DeviceSerial: deviceSerial,
		Operator:     operator,
		RelayDelay:   device.RelayDelay,
		Timestamp:    time.Now().UnixMilli(),
	}
	if err := s.publishMessage(TopicDeviceControl, msg); err != nil {
		return err
	}

	log.Printf("[MQTT] 远程开门指令已下发: 终端=%s, 操作人=%s", deviceSerial, operator)
	return nil
}

// NotifySyncPending 通知终端有待拉取的花名册变更
func (s *MQTTDeviceService) NotifySyncPending(deviceSerial string) error {
	msg := DeviceControlMessage{
		Action:       "sync_pending",
		DeviceSerial: deviceSerial,
		Timestamp:    time.Now().UnixMilli(),
	}
	return s.publishMessage(TopicDeviceControl, msg)
}

// publishMessage 发布消息到指定主题
func (s *MQTTDeviceService) publishMessage(topic string, payload interface{}) error {
	// 加锁保护发布过程，避免并发发布冲突
	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	// 检查连接状态
	s.connectedMutex.RLock()
	isConnected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()

	if !isConnected {
		log.Printf("[MQTT] 客户端未连接，尝试重新连接...")
		if err := s.Connect(); err != nil {
			return fmt.Errorf("MQTT客户端未连接: %v", err)
		}
	}

	// 序列化消息
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	// 发布消息，使用QoS 1确保消息至少被传递一次
	qos := byte(1)
	retained := false

	token := s.Client.Publish(topic, qos, retained, jsonData)

	// 设置超时时间，避免无限等待
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息超时")
	}

	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %v", token.Error())
	}
	return nil
}

// handleHeartbeat 处理终端心跳消息
func (s *MQTTDeviceService) handleHeartbeat(_ mqtt.Client, msg mqtt.Message) {
	// 使用defer和recover防止处理程序panic导致整个服务崩溃
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[MQTT] 处理心跳消息发生panic: %v", r)
		}
	}()

	var heartbeat HeartbeatMessage
	if err := json.Unmarshal(msg.Payload(), &heartbeat); err != nil {
		log.Printf("[MQTT] 解析心跳消息失败: %v", err)
		return
	}
	if heartbeat.DeviceSerial == "" {
		return
	}

	if err := s.Devices.Heartbeat(heartbeat.DeviceSerial, models.DeviceStatusOnline); err != nil {
		log.Printf("[MQTT] 记录终端 %s 心跳失败: %v", heartbeat.DeviceSerial, err)
	}
}

// handleSystemMessage 处理系统消息
func (s *MQTTDeviceService) handleSystemMessage(_ mqtt.Client, msg mqtt.Message) {
	var systemMsg SystemMessage
	if err := json.Unmarshal(msg.Payload(), &systemMsg); err != nil {
		log.Printf("[MQTT] 解析系统消息失败: %v", err)
		return
	}

	// 记录系统消息
	log.Printf("[MQTT] 收到系统消息: 类型=%s, 级别=%s, 消息=%s",
		systemMsg.Type, systemMsg.Level, systemMsg.Message)
}
