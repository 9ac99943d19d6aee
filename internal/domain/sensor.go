package domain

// Stream names
const (
	StreamSensorData = "stream:smartfarm:sensors"
)

// SensorReading - показание полевого датчика из телеметрии
type SensorReading struct {
	ID        string        `json:"id"`
	Timestamp int64         `json:"ts"`
	Lat       float64       `json:"lat"`
	Lon       float64       `json:"lon"`
	Message   string        `json:"message"`
	Payload   SensorPayload `json:"payload"`
}

type SensorPayload struct {
	Temp  float64 `json:"temp"`
	Hum   float64 `json:"hum"`
	Moist float64 `json:"moist"`
	PH    float64 `json:"ph"`
	N     float64 `json:"n"`
	P     float64 `json:"p"`
	K     float64 `json:"k"`
	Water float64 `json:"water"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
