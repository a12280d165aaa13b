package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/scraper"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== 来源端点 ====================

const (
	pathCategories = "wc/v3/products/categories"
	pathTags       = "wc/v3/products/tags"
	pathAttributes = "wc/v3/products/attributes"
	pathAttrTerms  = "wc/v3/products/attributes/%d/terms"
	pathProducts   = "wc/v3/products"
	pathVariations = "wc/v3/products/%d/variations"
	pathStores     = "dokan/v1/stores"
	pathPosts      = "wp/v2/posts"
	pathPostCats   = "wp/v2/categories"
	pathPostTags   = "wp/v2/tags"
)

// ==================== 运行报告 ====================

// StageReport 单阶段计数
type StageReport struct {
	Name    string `json:"name"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// RunReport 整轮运行报告
type RunReport struct {
	RunID      string        `json:"run_id"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageReport `json:"stages"`
}

// ==================== SyncService 同步编排 ====================

// SyncService 按固定阶段顺序执行一轮全量同步
// 顺序保证引用方向：分类/标签 -> 属性 -> 商品 -> 变体/报价 -> 卖家 -> 归属 -> 博客
// 每个阶段自己拉数据，单独重跑任意阶段结果一致
type SyncService struct {
	client   *woo.Client
	identity *IdentityService
	attrSvc  *AttributeService
	variants *VariantService
	vendors  *VendorService
	storage  *StorageService
	scraper  *scraper.MetaScraper
	batch    *BatchController
	cache    *RunCache

	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	productRepo  repository.ProductRepository
	offerRepo    repository.OfferRepository
	blogRepo     repository.BlogRepository
	runRepo      repository.SyncRunRepository
}

// SyncDeps 编排器依赖集合
type SyncDeps struct {
	Client   *woo.Client
	Identity *IdentityService
	Attrs    *AttributeService
	Variants *VariantService
	Vendors  *VendorService
	Storage  *StorageService
	Scraper  *scraper.MetaScraper // 可空，空则不抓 SEO

	Batch *BatchController
	Cache *RunCache

	CategoryRepo repository.CategoryRepository
	TagRepo      repository.TagRepository
	ProductRepo  repository.ProductRepository
	OfferRepo    repository.OfferRepository
	BlogRepo     repository.BlogRepository
	RunRepo      repository.SyncRunRepository
}

// NewSyncService 创建同步编排服务
func NewSyncService(deps SyncDeps) *SyncService {
	return &SyncService{
		client:       deps.Client,
		identity:     deps.Identity,
		attrSvc:      deps.Attrs,
		variants:     deps.Variants,
		vendors:      deps.Vendors,
		storage:      deps.Storage,
		scraper:      deps.Scraper,
		batch:        deps.Batch,
		cache:        deps.Cache,
		categoryRepo: deps.CategoryRepo,
		tagRepo:      deps.TagRepo,
		productRepo:  deps.ProductRepo,
		offerRepo:    deps.OfferRepo,
		blogRepo:     deps.BlogRepo,
		runRepo:      deps.RunRepo,
	}
}

type stageFunc func(ctx context.Context, report *StageReport) error

// Run 执行一轮全量同步
// 取消是协作式的：阶段间与记录间检查 ctx，已提交的批次保持提交
func (s *SyncService) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.New().String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := s.runRepo.Create(ctx, &model.SyncRun{
		RunID:     report.RunID,
		Status:    model.RunStatusRunning,
		StartedAt: report.StartedAt,
	}); err != nil {
		return nil, err
	}

	log.Printf("[SyncService] 同步开始 run=%s", report.RunID)
	s.cache.Reset()

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{"taxonomy", s.syncTaxonomy},
		{"attributes", s.syncAttributes},
		{"products", s.syncProducts},
		{"variants_offers", s.syncVariantsAndOffers},
		{"vendors", s.syncVendors},
		{"vendor_links", s.syncVendorLinks},
		{"blog", s.syncBlog},
	}

	var runErr error
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		sr := StageReport{Name: stage.name}
		err := stage.fn(ctx, &sr)
		if err == nil {
			err = s.batch.Flush(ctx)
		}
		if err != nil {
			sr.Error = err.Error()
			report.Stages = append(report.Stages, sr)
			runErr = fmt.Errorf("阶段 %s 失败: %w", stage.name, err)
			break
		}
		report.Stages = append(report.Stages, sr)
		log.Printf("[SyncService] 阶段 %s 完成: 新建 %d 更新 %d 跳过 %d 失败 %d",
			sr.Name, sr.Created, sr.Updated, sr.Skipped, sr.Failed)
	}

	report.FinishedAt = time.Now()
	switch {
	case runErr == nil:
		report.Status = model.RunStatusSucceeded
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		report.Status = model.RunStatusCanceled
	default:
		report.Status = model.RunStatusFailed
	}

	s.finishRun(report, runErr)
	log.Printf("[SyncService] 同步结束 run=%s status=%s 耗时=%s",
		report.RunID, report.Status, report.FinishedAt.Sub(report.StartedAt))
	return report, runErr
}

// finishRun 落盘运行记录，用独立 ctx 保证取消时也能写
func (s *SyncService) finishRun(report *RunReport, runErr error) {
	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("[SyncService] 报告序列化失败: %v", err)
		payload = nil
	}
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.runRepo.Finish(ctx, report.RunID, report.Status, payload, errMsg); err != nil {
		log.Printf("[SyncService] 运行记录落盘失败 run=%s: %v", report.RunID, err)
	}
}

// ==================== 阶段一：分类 / 标签 ====================

func (s *SyncService) syncTaxonomy(ctx context.Context, report *StageReport) error {
	categories, err := woo.GetAllPaged[woo.CategoryDTO](ctx, s.client, pathCategories, nil)
	if err != nil {
		return err
	}

	// 第一遍建行，第二遍接父指针，保证父引用已经有了内部 ID
	internalByExt := make(map[int64]int64, len(categories))
	for _, dto := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dto.ID <= 0 || dto.Name == "" {
			report.Skipped++
			continue
		}
		d := dto
		extID := strconv.FormatInt(d.ID, 10)

		existing, found, err := s.identity.Find(ctx, model.EntityCategory, extID)
		if err != nil {
			return err
		}
		if found {
			cat, err := s.categoryRepo.GetByID(ctx, existing)
			if err != nil {
				return err
			}
			if cat == nil {
				report.Skipped++
				continue
			}
			ApplyCategoryDTO(cat, d)
			if err := s.categoryRepo.Update(ctx, cat); err != nil {
				return err
			}
			internalByExt[d.ID] = cat.ID
			report.Updated++
			continue
		}

		id, err := s.identity.GetOrCreate(ctx, s.cache, model.EntityCategory, extID, d.Slug,
			func(ctx context.Context) (int64, error) {
				c := ToCategoryModel(d)
				if err := s.categoryRepo.Create(ctx, c); err != nil {
					return 0, err
				}
				return c.ID, nil
			})
		if err != nil {
			return err
		}
		internalByExt[d.ID] = id
		report.Created++
	}

	if err := s.linkCategoryParents(ctx, categories, internalByExt, report); err != nil {
		return err
	}

	// 标签是平的，一遍即可
	tags, err := woo.GetAllPaged[woo.TagDTO](ctx, s.client, pathTags, nil)
	if err != nil {
		return err
	}
	for _, dto := range tags {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dto.ID <= 0 || dto.Name == "" {
			report.Skipped++
			continue
		}
		d := dto
		extID := strconv.FormatInt(d.ID, 10)

		existing, found, err := s.identity.Find(ctx, model.EntityTag, extID)
		if err != nil {
			return err
		}
		if found {
			tag, err := s.tagRepo.GetByID(ctx, existing)
			if err != nil {
				return err
			}
			if tag == nil {
				report.Skipped++
				continue
			}
			ApplyTagDTO(tag, d)
			if err := s.tagRepo.Update(ctx, tag); err != nil {
				return err
			}
			report.Updated++
			continue
		}

		if _, err := s.identity.GetOrCreate(ctx, s.cache, model.EntityTag, extID, d.Slug,
			func(ctx context.Context) (int64, error) {
				t := ToTagModel(d)
				if err := s.tagRepo.Create(ctx, t); err != nil {
					return 0, err
				}
				return t.ID, nil
			}); err != nil {
			return err
		}
		report.Created++
	}
	return nil
}

// linkCategoryParents 第二遍接父指针，写库前沿父链走一遍拒绝成环
func (s *SyncService) linkCategoryParents(ctx context.Context, categories []woo.CategoryDTO, internalByExt map[int64]int64, report *StageReport) error {
	desired := make(map[int64]int64) // 内部子 ID -> 内部父 ID
	for _, dto := range categories {
		childID, ok := internalByExt[dto.ID]
		if !ok || dto.Parent <= 0 {
			continue
		}
		parentID, ok := internalByExt[dto.Parent]
		if !ok {
			// 来源引用了没回传的分类
			log.Printf("[SyncService] 分类 %d 的父 %d 未映射，父指针置空", dto.ID, dto.Parent)
			report.Skipped++
			continue
		}
		desired[childID] = parentID
	}

	for _, dto := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		childID, ok := internalByExt[dto.ID]
		if !ok {
			continue
		}
		parentID, hasParent := desired[childID]
		if !hasParent {
			if err := s.categoryRepo.SetParent(ctx, childID, nil); err != nil {
				return err
			}
			continue
		}
		if hasCategoryCycle(desired, childID) {
			log.Printf("[SyncService] 分类 %d 父链成环，父指针置空", dto.ID)
			report.Failed++
			if err := s.categoryRepo.SetParent(ctx, childID, nil); err != nil {
				return err
			}
			continue
		}
		if err := s.categoryRepo.SetParent(ctx, childID, &parentID); err != nil {
			return err
		}
	}
	return nil
}

// hasCategoryCycle 从 start 沿父链走，撞回 start 即成环
func hasCategoryCycle(desired map[int64]int64, start int64) bool {
	seen := map[int64]bool{start: true}
	cur := start
	for {
		parent, ok := desired[cur]
		if !ok {
			return false
		}
		if seen[parent] {
			return true
		}
		seen[parent] = true
		cur = parent
	}
}

// ==================== 阶段二：全局属性 ====================

func (s *SyncService) syncAttributes(ctx context.Context, report *StageReport) error {
	attrs, err := woo.GetAllPaged[woo.AttributeDTO](ctx, s.client, pathAttributes, nil)
	if err != nil {
		return err
	}
	for _, dto := range attrs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dto.ID <= 0 || dto.Name == "" {
			report.Skipped++
			continue
		}
		terms, err := woo.GetAllPaged[woo.TermDTO](ctx, s.client, fmt.Sprintf(pathAttrTerms, dto.ID), nil)
		if err != nil {
			return err
		}
		options := make([]string, 0, len(terms))
		for _, t := range terms {
			options = append(options, t.Name)
		}

		attr, err := s.attrSvc.EnsureAttribute(ctx, s.cache, SourceAttr{
			GlobalID: dto.ID,
			Name:     dto.Name,
			Options:  options,
		})
		if err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				report.Skipped++
				continue
			}
			return err
		}
		report.Updated++

		for _, opt := range options {
			if _, err := s.attrSvc.EnsureOption(ctx, s.cache, attr.ID, opt); err != nil {
				if errors.Is(err, ErrMalformedRecord) {
					report.Skipped++
					continue
				}
				return err
			}
		}
	}
	return nil
}

// ==================== 阶段三：商品 ====================

func (s *SyncService) syncProducts(ctx context.Context, report *StageReport) error {
	for page := 1; ; page++ {
		items, err := woo.GetPage[woo.ProductDTO](ctx, s.client, pathProducts, nil, page)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			break
		}
		for _, dto := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.syncOneProduct(ctx, dto, report); err != nil {
				return err
			}
		}
		// 分页边界冲一次，页内实体落稳
		if err := s.batch.Flush(ctx); err != nil {
			return err
		}
		if len(items) < s.client.PageSize() {
			break
		}
	}
	return nil
}

func (s *SyncService) syncOneProduct(ctx context.Context, dto woo.ProductDTO, report *StageReport) error {
	if dto.ID <= 0 || dto.Name == "" {
		report.Skipped++
		return nil
	}
	d := dto
	extID := strconv.FormatInt(d.ID, 10)

	// 引用解析先行：任何一个引用没着落，整条记录跳过
	categoryIDs, ok, err := s.resolveRefs(ctx, model.EntityCategory, d.Categories)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[SyncService] 商品 %d 引用了未映射分类，跳过", d.ID)
		report.Skipped++
		return nil
	}
	tagIDs, ok, err := s.resolveRefs(ctx, model.EntityTag, d.Tags)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("[SyncService] 商品 %d 引用了未映射标签，跳过", d.ID)
		report.Skipped++
		return nil
	}

	var product *model.Product
	existing, found, err := s.identity.Find(ctx, model.EntityProduct, extID)
	if err != nil {
		return err
	}
	if found {
		product, err = s.productRepo.GetByIDUnscoped(ctx, existing)
		if err != nil {
			return err
		}
		if product == nil {
			log.Printf("[SyncService] 商品映射 %s 指向的内部行不存在，跳过", extID)
			report.Skipped++
			return nil
		}
		ApplyProductDTO(product, d)
		if err := s.batch.GuardedSave(ctx, product); err != nil {
			return err
		}
		report.Updated++
	} else {
		if _, err := s.identity.GetOrCreate(ctx, s.cache, model.EntityProduct, extID, d.Slug,
			func(ctx context.Context) (int64, error) {
				p := ToProductModel(d)
				if err := s.productRepo.Create(ctx, p); err != nil {
					return 0, err
				}
				product = p
				return p.ID, nil
			}); err != nil {
			return err
		}
		if product == nil {
			// 并发赢家已建行，按映射取回
			id, _, ferr := s.identity.Find(ctx, model.EntityProduct, extID)
			if ferr != nil {
				return ferr
			}
			product, ferr = s.productRepo.GetByIDUnscoped(ctx, id)
			if ferr != nil {
				return ferr
			}
			if product == nil {
				report.Skipped++
				return nil
			}
		}
		report.Created++
	}

	if err := s.productRepo.ReplaceCategoryLinks(ctx, product.ID, categoryIDs); err != nil {
		return err
	}
	if err := s.productRepo.ReplaceTagLinks(ctx, product.ID, tagIDs); err != nil {
		return err
	}

	// 图片镜像尽力而为，失败不影响商品
	assets := ToMediaAssets(product.ID, d.Images)
	if s.storage != nil {
		ptrs := make([]*model.MediaAsset, len(assets))
		for i := range assets {
			ptrs[i] = &assets[i]
		}
		s.storage.MirrorAssets(ctx, ptrs)
	}
	if err := s.productRepo.ReplaceMediaAssets(ctx, product.ID, assets); err != nil {
		return err
	}

	// 商品上声明的属性也过一遍归一化，内联自定义属性(ID==0)只在这里出现
	for _, pa := range d.Attributes {
		attr, err := s.attrSvc.EnsureAttribute(ctx, s.cache, SourceAttr{
			GlobalID: pa.ID,
			Name:     pa.Name,
			Options:  pa.Options,
		})
		if err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				continue
			}
			return err
		}
		for _, opt := range pa.Options {
			if _, err := s.attrSvc.EnsureOption(ctx, s.cache, attr.ID, opt); err != nil {
				if errors.Is(err, ErrMalformedRecord) {
					continue
				}
				return err
			}
		}
	}

	if s.scraper != nil && d.Permalink != "" {
		s.scrapeSeoMeta(ctx, product.ID, d.Permalink)
	}
	return nil
}

// resolveRefs 把外部引用批量换成内部 ID，缺一个就整体不通过
func (s *SyncService) resolveRefs(ctx context.Context, entityType string, refs []woo.RefDTO) ([]int64, bool, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if ref.ID <= 0 {
			continue
		}
		id, found, err := s.identity.Find(ctx, entityType, strconv.FormatInt(ref.ID, 10))
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, nil
		}
		ids = append(ids, id)
	}
	return ids, true, nil
}

// scrapeSeoMeta 抓商品详情页的 head 元数据，纯尽力而为
func (s *SyncService) scrapeSeoMeta(ctx context.Context, productID int64, permalink string) {
	meta, err := s.scraper.Scrape(ctx, permalink)
	if err != nil {
		log.Printf("[SyncService] SEO 抓取失败 %s: %v", permalink, err)
		return
	}
	structured, err := marshalJSON(meta.StructuredData)
	if err != nil {
		log.Printf("[SyncService] SEO 结构化数据序列化失败 %s: %v", permalink, err)
		structured = nil
	}
	if err := s.productRepo.UpsertSeoMeta(ctx, &model.ProductSeoMeta{
		ProductID:       productID,
		MetaTitle:       meta.Title,
		MetaDescription: meta.MetaDescription,
		StructuredData:  structured,
	}); err != nil {
		log.Printf("[SyncService] SEO 元数据落盘失败 product=%d: %v", productID, err)
	}
}

// ==================== 阶段四：变体 / 报价 ====================

func (s *SyncService) syncVariantsAndOffers(ctx context.Context, report *StageReport) error {
	defaultVendorID, err := s.vendors.EnsureDefaultVendor(ctx)
	if err != nil {
		return err
	}

	for page := 1; ; page++ {
		items, err := woo.GetPage[woo.ProductDTO](ctx, s.client, pathProducts, nil, page)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			break
		}
		for _, dto := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dto.ID <= 0 {
				report.Skipped++
				continue
			}
			extID := strconv.FormatInt(dto.ID, 10)
			internalID, found, err := s.identity.Find(ctx, model.EntityProduct, extID)
			if err != nil {
				return err
			}
			if !found {
				// 商品阶段没收下的记录这里也收不下
				report.Skipped++
				continue
			}
			product, err := s.productRepo.GetByIDUnscoped(ctx, internalID)
			if err != nil {
				return err
			}
			if product == nil {
				report.Skipped++
				continue
			}

			isVariable := dto.Type == "variable" || len(dto.Variations) > 0 ||
				product.Kind == model.ProductKindVariable
			if !isVariable {
				if err := s.variants.ReconcileSimple(ctx, s.cache, product, dto, defaultVendorID); err != nil {
					return err
				}
				report.Updated++
				continue
			}

			variations, err := woo.GetAllPaged[woo.VariationDTO](ctx, s.client, fmt.Sprintf(pathVariations, dto.ID), nil)
			if err != nil {
				return err
			}
			n, err := s.variants.ReconcileVariable(ctx, s.cache, product, dto, variations, defaultVendorID)
			if err != nil {
				return err
			}
			report.Created += n
			report.Updated++
		}
		if err := s.batch.Flush(ctx); err != nil {
			return err
		}
		if len(items) < s.client.PageSize() {
			break
		}
	}
	return nil
}

// ==================== 阶段五：卖家 / 用户 ====================

func (s *SyncService) syncVendors(ctx context.Context, report *StageReport) error {
	stores, err := woo.GetAllPaged[woo.StoreDTO](ctx, s.client, pathStores, nil)
	if err != nil {
		return err
	}
	for _, dto := range stores {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dto.ID <= 0 {
			report.Skipped++
			continue
		}
		if _, _, err := s.vendors.ResolveStore(ctx, s.cache, dto); err != nil {
			if errors.Is(err, ErrMalformedRecord) {
				log.Printf("[SyncService] 店铺 %d 记录不完整，跳过: %v", dto.ID, err)
				report.Skipped++
				continue
			}
			return err
		}
		report.Updated++
	}
	return nil
}

// ==================== 阶段六：商品归属 ====================

// syncVendorLinks 把商品和报价改指到归属卖家；无店铺的商品挂平台兜底卖家
func (s *SyncService) syncVendorLinks(ctx context.Context, report *StageReport) error {
	defaultVendorID, err := s.vendors.EnsureDefaultVendor(ctx)
	if err != nil {
		return err
	}

	for page := 1; ; page++ {
		items, err := woo.GetPage[woo.ProductDTO](ctx, s.client, pathProducts, nil, page)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			break
		}
		for _, dto := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dto.ID <= 0 {
				report.Skipped++
				continue
			}

			vendorID := defaultVendorID
			if dto.Store != nil && dto.Store.ID > 0 {
				storeExt := strconv.FormatInt(dto.Store.ID, 10)
				id, found := s.cache.GetVendorID(storeExt)
				if !found {
					id, found, err = s.identity.Find(ctx, model.EntityVendor, storeExt)
					if err != nil {
						return err
					}
					if found {
						s.cache.PutVendorID(storeExt, id)
					}
				}
				if !found {
					log.Printf("[SyncService] 商品 %d 引用了未映射店铺 %d，跳过归属", dto.ID, dto.Store.ID)
					report.Skipped++
					continue
				}
				vendorID = id
			}

			internalID, found, err := s.identity.Find(ctx, model.EntityProduct, strconv.FormatInt(dto.ID, 10))
			if err != nil {
				return err
			}
			if !found {
				report.Skipped++
				continue
			}
			product, err := s.productRepo.GetByIDUnscoped(ctx, internalID)
			if err != nil {
				return err
			}
			if product == nil {
				report.Skipped++
				continue
			}

			if product.VendorID != vendorID {
				product.VendorID = vendorID
				if err := s.batch.GuardedSave(ctx, product); err != nil {
					return err
				}
				report.Updated++
			}

			offer, err := s.offerRepo.GetAnyByProduct(ctx, product.ID)
			if err != nil {
				return err
			}
			if offer != nil && offer.VendorID != vendorID {
				if err := s.offerRepo.RepointVendor(ctx, offer.ID, vendorID); err != nil {
					return err
				}
			}
		}
		if err := s.batch.Flush(ctx); err != nil {
			return err
		}
		if len(items) < s.client.PageSize() {
			break
		}
	}
	return nil
}

// ==================== 阶段七：博客 ====================

func (s *SyncService) syncBlog(ctx context.Context, report *StageReport) error {
	catByExt, err := s.syncBlogTerms(ctx, pathPostCats, model.EntityBlogCategory, report)
	if err != nil {
		return err
	}
	tagByExt, err := s.syncBlogTerms(ctx, pathPostTags, model.EntityBlogTag, report)
	if err != nil {
		return err
	}

	for page := 1; ; page++ {
		posts, err := woo.GetPage[woo.PostDTO](ctx, s.client, pathPosts, nil, page)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			break
		}
		for _, dto := range posts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dto.ID <= 0 || dto.Title.Rendered == "" {
				report.Skipped++
				continue
			}
			d := dto
			extID := strconv.FormatInt(d.ID, 10)

			var post *model.BlogPost
			existing, found, err := s.identity.Find(ctx, model.EntityBlogPost, extID)
			if err != nil {
				return err
			}
			if found {
				post, err = s.blogRepo.GetPostByID(ctx, existing)
				if err != nil {
					return err
				}
				if post == nil {
					report.Skipped++
					continue
				}
				ApplyBlogPostDTO(post, d, post.AuthorUserID)
				if err := s.blogRepo.UpdatePost(ctx, post); err != nil {
					return err
				}
				report.Updated++
			} else {
				if _, err := s.identity.GetOrCreate(ctx, s.cache, model.EntityBlogPost, extID, d.Slug,
					func(ctx context.Context) (int64, error) {
						p := ToBlogPostModel(d, 0)
						if err := s.blogRepo.CreatePost(ctx, p); err != nil {
							return 0, err
						}
						post = p
						return p.ID, nil
					}); err != nil {
					return err
				}
				if post == nil {
					report.Skipped++
					continue
				}
				report.Created++
			}

			catIDs := resolveTermIDs(catByExt, d.Categories)
			tagIDs := resolveTermIDs(tagByExt, d.Tags)
			if err := s.blogRepo.ReplacePostTerms(ctx, post.ID, catIDs, tagIDs); err != nil {
				return err
			}
		}
		if len(posts) < s.client.PageSize() {
			break
		}
	}
	return nil
}

// syncBlogTerms 同步博客分类或标签，返回外部 ID -> 内部 ID
func (s *SyncService) syncBlogTerms(ctx context.Context, path, entityType string, report *StageReport) (map[int64]int64, error) {
	terms, err := woo.GetAllPaged[woo.WPTermDTO](ctx, s.client, path, nil)
	if err != nil {
		return nil, err
	}
	byExt := make(map[int64]int64, len(terms))
	for _, dto := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dto.ID <= 0 || dto.Name == "" {
			report.Skipped++
			continue
		}
		d := dto
		extID := strconv.FormatInt(d.ID, 10)

		existing, found, err := s.identity.Find(ctx, entityType, extID)
		if err != nil {
			return nil, err
		}
		if found {
			if err := s.updateBlogTerm(ctx, entityType, existing, d); err != nil {
				return nil, err
			}
			byExt[d.ID] = existing
			report.Updated++
			continue
		}

		id, err := s.identity.GetOrCreate(ctx, s.cache, entityType, extID, d.Slug,
			func(ctx context.Context) (int64, error) {
				return s.createBlogTerm(ctx, entityType, d)
			})
		if err != nil {
			return nil, err
		}
		byExt[d.ID] = id
		report.Created++
	}
	return byExt, nil
}

func (s *SyncService) createBlogTerm(ctx context.Context, entityType string, d woo.WPTermDTO) (int64, error) {
	switch entityType {
	case model.EntityBlogCategory:
		c := &model.BlogCategory{Name: d.Name, Slug: d.Slug}
		if err := s.blogRepo.CreateCategory(ctx, c); err != nil {
			return 0, err
		}
		return c.ID, nil
	default:
		t := &model.BlogTag{Name: d.Name, Slug: d.Slug}
		if err := s.blogRepo.CreateTag(ctx, t); err != nil {
			return 0, err
		}
		return t.ID, nil
	}
}

func (s *SyncService) updateBlogTerm(ctx context.Context, entityType string, id int64, d woo.WPTermDTO) error {
	switch entityType {
	case model.EntityBlogCategory:
		c, err := s.blogRepo.GetCategoryByID(ctx, id)
		if err != nil || c == nil {
			return err
		}
		c.Name = d.Name
		c.Slug = d.Slug
		return s.blogRepo.UpdateCategory(ctx, c)
	default:
		t, err := s.blogRepo.GetTagByID(ctx, id)
		if err != nil || t == nil {
			return err
		}
		t.Name = d.Name
		t.Slug = d.Slug
		return s.blogRepo.UpdateTag(ctx, t)
	}
}

func resolveTermIDs(byExt map[int64]int64, extIDs []int64) []int64 {
	ids := make([]int64, 0, len(extIDs))
	for _, ext := range extIDs {
		if id, ok := byExt[ext]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
