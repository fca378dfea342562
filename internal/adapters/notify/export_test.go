package notify

import amqp "github.com/rabbitmq/amqp091-go"

func (p *RabbitMQPublisher) Channel() *amqp.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess.ch
}

func (p *RabbitMQPublisher) Connection() *amqp.Connection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess.conn
}
