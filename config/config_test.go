package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stefanpapad/target-balancer/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:     ":8080",
			Environment: config.EnvDev,
		},
		Logging: config.LoggingConfig{
			Level: config.LogLevelInfo,
		},
		Balancer: config.BalancerConfig{
			Algorithm:         "ROUND_ROBIN",
			ConnectionTimeout: "10s",
		},
		TargetGroups: []config.TargetGroupConfig{
			{Name: "api", Route: "/api", Targets: "10.0.0.1:8081,10.0.0.2:8082"},
		},
	}
}

var _ = Describe("Config", func() {
	Describe("Load", func() {
		var (
			tempDir     string
			originalDir string
		)

		BeforeEach(func() {
			var err error
			originalDir, err = os.Getwd()
			Expect(err).NotTo(HaveOccurred())

			tempDir, err = os.MkdirTemp("", "config-test-*")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(os.Chdir(originalDir)).To(Succeed())
			os.RemoveAll(tempDir)
		})

		Context("with a valid config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":8080"
  environment: "dev"

logging:
  level: "info"

balancer:
  algorithm: "ROUND_ROBIN"
  connection_timeout: "3s"

target_groups:
  - name: "api"
    route: "/api"
    targets: "10.0.0.1:8081/svc,10.0.0.2"
    weights:
      10.0.0.1: 3
  - name: "billing"
    route: "/billing"
    targets: "10.0.1.1:9090"
`
				configPath := filepath.Join(tempDir, "config.yaml")
				Expect(os.WriteFile(configPath, []byte(configContent), 0644)).To(Succeed())
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.LoadBalancingAlgorithm()).To(Equal("ROUND_ROBIN"))
				Expect(cfg.ConnectionTimeout()).To(Equal(3 * time.Second))

				Expect(cfg.TargetGroups).To(HaveLen(2))
				Expect(cfg.TargetGroups[0].Name).To(Equal("api"))
				Expect(cfg.TargetGroups[0].Weights).To(HaveKeyWithValue("10.0.0.1", 3))
				Expect(cfg.TargetGroups[1].Weights).To(BeNil())
			})
		})

		Context("without target groups", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":8080"
  environment: "dev"
`
				configPath := filepath.Join(tempDir, "config.yaml")
				Expect(os.WriteFile(configPath, []byte(configContent), 0644)).To(Succeed())
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should fail validation", func() {
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		It("should accept a complete configuration", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("should reject an invalid environment", func() {
			cfg := validConfig()
			cfg.Server.Environment = "production"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an invalid connection timeout", func() {
			cfg := validConfig()
			cfg.Balancer.ConnectionTimeout = "soon"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject duplicate group names", func() {
			cfg := validConfig()
			cfg.TargetGroups = append(cfg.TargetGroups, config.TargetGroupConfig{
				Name: "api", Route: "/other", Targets: "10.0.0.3",
			})
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a relative route", func() {
			cfg := validConfig()
			cfg.TargetGroups[0].Route = "api"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an empty targets specification", func() {
			cfg := validConfig()
			cfg.TargetGroups[0].Targets = "  "
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject non-positive weights", func() {
			cfg := validConfig()
			cfg.TargetGroups[0].Weights = map[string]int{"10.0.0.1": 0}
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("ConnectionTimeout", func() {
		It("should fall back to the default for an unset value", func() {
			cfg := &config.Config{}
			Expect(cfg.ConnectionTimeout()).To(Equal(10 * time.Second))
		})
	})
})
