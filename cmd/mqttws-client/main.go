package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/golang-io/mqttws"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	host := flag.String("host", "127.0.0.1", "broker host")
	port := flag.String("port", "8443", "broker port")
	topic := flag.String("topic", "a/b/c", "topic to subscribe and publish on")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())

	c, err := mqttws.New(*host, *port)
	if err != nil {
		log.Fatalf("new client: %v", err)
	}
	c.OnMessage(func(topic string, payload []byte, qos uint8) {
		log.Printf("on: topic=%s qos=%d msg=%s", topic, qos, payload)
	})

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	err = c.Connect(connectCtx, mqttws.ConnectParams{KeepAlive: 60})
	connectCancel()
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	if _, err := c.Subscribe(*topic, 1); err != nil {
		log.Printf("subscribe: %v", err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return c.RunUntil(ctx, 2*time.Second)
	})

	group.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if _, err := c.Publish(*topic, []byte(now.Format(time.RFC3339)), 1, false); err != nil {
					log.Printf("publish: %v", err)
				}
			}
		}
	})

	group.Go(func() error {
		defer cancel()
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		<-sig
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}
}
