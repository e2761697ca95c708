// Command envelope encrypts and decrypts values with KMS backed envelope
// encryption.
//
//	echo -n "secret" | envelope encrypt --kms-key-id alias/vault --context object_id=secret_123
//	echo -n "<payload>" | envelope decrypt --context object_id=secret_123
package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/remind101/vault/crypto/envelope"
	"github.com/remind101/vault/logger"
	"github.com/remind101/vault/metrics"
	awsot "github.com/remind101/vault/tracing/contrib/aws"
	"github.com/urfave/cli"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/opentracer"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var commonFlags = []cli.Flag{
	cli.StringSliceFlag{
		Name:  "context, c",
		Usage: "key=value pair bound to the data key. Can be given more than once.",
	},
	cli.StringFlag{
		Name:   "aad",
		Usage:  "Additional authenticated data bound to the ciphertext",
		EnvVar: "VAULT_AAD",
	},
	cli.StringFlag{
		Name:   "region",
		Usage:  "AWS region of the KMS key",
		EnvVar: "AWS_REGION",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "envelope"
	app.Usage = "Envelope encryption with AWS KMS data keys"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level",
			Value:  "info",
			EnvVar: "LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "statsd",
			Usage:  "Address of a DataDog statsd agent. Metrics are discarded if empty.",
			EnvVar: "STATSD_ADDR",
		},
		cli.StringFlag{
			Name:   "ddtrace",
			Usage:  "Address of a DataDog trace agent. KMS requests are not traced if empty.",
			EnvVar: "DDTRACE_ADDR",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt stdin and print the envelope",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:   "kms-key-id",
					Usage:  "KMS CMK used to generate data keys",
					EnvVar: "VAULT_KMS_KEY_ID",
				},
			}, commonFlags...),
			Action: runEncrypt,
		},
		{
			Name:   "decrypt",
			Usage:  "Decrypt an envelope read from stdin and print the plaintext",
			Flags:  commonFlags,
			Action: runDecrypt,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runEncrypt(c *cli.Context) error {
	if c.String("kms-key-id") == "" {
		return cli.NewExitError("--kms-key-id is required", 1)
	}
	return run(c, func(ctx context.Context, v *envelope.Vault, kc envelope.KeyContext, in string) (string, error) {
		return v.Encrypt(ctx, in, kc, c.String("aad"))
	})
}

func runDecrypt(c *cli.Context) error {
	return run(c, func(ctx context.Context, v *envelope.Vault, kc envelope.KeyContext, in string) (string, error) {
		return v.Decrypt(ctx, strings.TrimSpace(in), kc, c.String("aad"))
	})
}

func run(c *cli.Context, fn func(context.Context, *envelope.Vault, envelope.KeyContext, string) (string, error)) error {
	ctx := logger.WithLogger(context.Background(), logger.NewFromLevel(c.GlobalString("log-level")))

	if addr := c.GlobalString("statsd"); addr != "" {
		r, err := metrics.NewDataDogMetricsReporter(addr, "envelope.")
		if err != nil {
			return err
		}
		metrics.Reporter = r
		defer metrics.Close()
	}

	if addr := c.GlobalString("ddtrace"); addr != "" {
		defer initTracer(addr)()
	}

	kc, err := parseKeyContext(c.StringSlice("context"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	sess, err := session.NewSession(&aws.Config{Region: regionOrNil(c.String("region"))})
	if err != nil {
		return errors.Wrap(err, "creating AWS session")
	}
	awsot.WithTracing(&sess.Handlers)
	v := envelope.NewVault(envelope.NewKMSKeyService(sess, c.String("kms-key-id")))

	in, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "reading stdin")
	}

	out, err := fn(ctx, v, kc, string(in))
	if err != nil {
		logger.Error(ctx, "envelope command failed", "command", c.Command.Name, "error", err)
		return err
	}

	fmt.Println(out)
	return nil
}

// initTracer sets a DataDog tracer as the global opentracing tracer, and
// returns a func that stops it.
func initTracer(addr string) func() {
	t := opentracer.New(
		tracer.WithServiceName("envelope"),
		tracer.WithAgentAddr(addr),
	)
	opentracing.SetGlobalTracer(t)
	return tracer.Stop
}

// parseKeyContext parses key=value pairs.
func parseKeyContext(pairs []string) (envelope.KeyContext, error) {
	kc := make(envelope.KeyContext, len(pairs))
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid context %q, expected key=value", p)
		}
		kc[parts[0]] = parts[1]
	}
	return kc, nil
}

func regionOrNil(region string) *string {
	if region == "" {
		return nil
	}
	return aws.String(region)
}
