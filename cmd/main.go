package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"woo_import_v1_202601/internal/controller"
	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/internal/router"
	"woo_import_v1_202601/internal/service"
	"woo_import_v1_202601/internal/task"
	"woo_import_v1_202601/pkg/config"
	"woo_import_v1_202601/pkg/database"
	"woo_import_v1_202601/pkg/scraper"
	"woo_import_v1_202601/pkg/woo"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动定时任务
	deps.Tasks.Start()

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Sync, deps.Controllers.Mapping)

	// 6. 启动服务
	startServer(cfg.Server.Addr, r, deps.Tasks)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	IdentityMap repository.IdentityMapRepository
	Category    repository.CategoryRepository
	Tag         repository.TagRepository
	Attribute   repository.AttributeRepository
	Product     repository.ProductRepository
	Offer       repository.OfferRepository
	User        repository.UserRepository
	Vendor      repository.VendorRepository
	Blog        repository.BlogRepository
	SyncRun     repository.SyncRunRepository
}

// Services 服务集合
type Services struct {
	Identity *service.IdentityService
	Attrs    *service.AttributeService
	Variants *service.VariantService
	Vendors  *service.VendorService
	Storage  *service.StorageService
	Batch    *service.BatchController
	Sync     *service.SyncService
}

// Controllers 控制器集合
type Controllers struct {
	Sync    *controller.SyncController
	Mapping *controller.MappingController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN,
		// Identity
		&model.ExternalIdentityMap{},
		// Taxonomy
		&model.Category{}, &model.Tag{},
		// Attribute
		&model.AttributeGroup{}, &model.Attribute{}, &model.AttributeOption{},
		// Product
		&model.Product{}, &model.ProductCategory{}, &model.ProductTag{},
		&model.ProductVariant{}, &model.ProductVariantAttributeValue{},
		&model.MediaAsset{}, &model.ProductSeoMeta{},
		// Vendor
		&model.User{}, &model.Vendor{}, &model.VendorMember{},
		&model.VendorOffer{}, &model.VendorOfferVariant{},
		// Blog
		&model.BlogPost{}, &model.BlogCategory{}, &model.BlogTag{},
		&model.BlogPostCategory{}, &model.BlogPostTag{},
		// Run
		&model.SyncRun{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 来源客户端 --------
	client := woo.NewClient(woo.ClientConfig{
		BaseURL:        cfg.Source.BaseURL,
		ConsumerKey:    cfg.Source.ConsumerKey,
		ConsumerSecret: cfg.Source.ConsumerSecret,
		PageSize:       cfg.Source.PageSize,
		Timeout:        cfg.Source.Timeout,
		RetryCount:     cfg.Source.RetryCount,
	})

	// -------- 运行期缓存 & 批量提交 --------
	cache := service.NewRunCache()
	batch := service.NewBatchController(db, cfg.Sync.BatchSize, cache, service.LogConflictReporter{})

	// -------- 业务服务 --------
	identitySvc := service.NewIdentityService(repos.IdentityMap, cfg.Source.Provider)
	attrSvc := service.NewAttributeService(repos.Attribute)
	vendorSvc := service.NewVendorService(repos.User, repos.Vendor, identitySvc)
	variantSvc := service.NewVariantService(repos.Product, repos.Offer, attrSvc, identitySvc, batch)
	storageSvc := initStorageService(cfg)

	var metaScraper *scraper.MetaScraper
	if cfg.Source.ScrapeSeo {
		metaScraper = scraper.NewMetaScraper(cfg.Source.Timeout)
	}

	syncSvc := service.NewSyncService(service.SyncDeps{
		Client:   client,
		Identity: identitySvc,
		Attrs:    attrSvc,
		Variants: variantSvc,
		Vendors:  vendorSvc,
		Storage:  storageSvc,
		Scraper:  metaScraper,

		Batch: batch,
		Cache: cache,

		CategoryRepo: repos.Category,
		TagRepo:      repos.Tag,
		ProductRepo:  repos.Product,
		OfferRepo:    repos.Offer,
		BlogRepo:     repos.Blog,
		RunRepo:      repos.SyncRun,
	})

	services := &Services{
		Identity: identitySvc,
		Attrs:    attrSvc,
		Variants: variantSvc,
		Vendors:  vendorSvc,
		Storage:  storageSvc,
		Batch:    batch,
		Sync:     syncSvc,
	}

	// -------- 定时任务 --------
	tasks := task.NewTaskManager(syncSvc, &task.TaskManagerConfig{
		CatalogEnabled: true,
		CronSpec:       cfg.Sync.CronSpec,
		RunOnStartup:   cfg.Sync.RunOnStartup,
	})

	// -------- Controller 层 --------
	controllers := &Controllers{
		Sync:    controller.NewSyncController(tasks, repos.SyncRun),
		Mapping: controller.NewMappingController(repos.IdentityMap, cfg.Source.Provider),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks:       tasks,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		IdentityMap: repository.NewIdentityMapRepository(db),
		Category:    repository.NewCategoryRepository(db),
		Tag:         repository.NewTagRepository(db),
		Attribute:   repository.NewAttributeRepository(db),
		Product:     repository.NewProductRepository(db),
		Offer:       repository.NewOfferRepository(db),
		User:        repository.NewUserRepository(db),
		Vendor:      repository.NewVendorRepository(db),
		Blog:        repository.NewBlogRepository(db),
		SyncRun:     repository.NewSyncRunRepository(db),
	}
}

// initStorageService 初始化存储服务
func initStorageService(cfg *config.Config) *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  cfg.Storage.Provider,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		CDNDomain: cfg.Storage.CDNDomain,
		BasePath:  cfg.Storage.BasePath,
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败，图片镜像关闭: %v", err)
		return nil
	}
	return storageSvc
}

// ==================== 服务启动 ====================

// startServer 启动服务并处理优雅退出
func startServer(addr string, r *gin.Engine, tasks *task.TaskManager) {
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Printf("服务启动于 %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，开始优雅关闭...")

	tasks.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP 服务关闭异常: %v", err)
	}
	log.Println("服务已退出")
}
