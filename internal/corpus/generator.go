package corpus

import (
	"fmt"
	"math/rand"
	"strings"
)

// Generator produces a synthetic tech catalog: product rows, FAQ entries,
// and chunked manual text. Output is deterministic for a given seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var (
	laptopBrands = []string{"Dell", "HP", "Lenovo", "Apple", "ASUS", "Acer", "Microsoft"}
	phoneBrands  = []string{"Apple", "Samsung", "Google", "OnePlus", "Xiaomi"}
	tabletBrands = []string{"Apple", "Samsung", "Microsoft", "Lenovo", "Amazon"}

	laptopSeries = []string{"Pro", "Plus", "Elite", "Inspiron", "Pavilion", "ThinkPad", "VivoBook"}
	phoneSeries  = []string{"Pro", "Max", "Plus", "Ultra", "Note"}
	tabletSeries = []string{"Pro", "Air", "Tab", "Surface"}

	laptopProcessors = []string{
		"Intel Core i5-13th Gen", "Intel Core i7-13th Gen", "Intel Core i9-13th Gen",
		"AMD Ryzen 5 7000", "AMD Ryzen 7 7000", "AMD Ryzen 9 7000",
		"Apple M2", "Apple M2 Pro", "Apple M2 Max",
	}
	phoneProcessors = []string{
		"Snapdragon 8 Gen 2", "Snapdragon 8+ Gen 1", "Apple A16 Bionic",
		"Apple A17 Pro", "Google Tensor G3", "MediaTek Dimensity 9200",
	}
	tabletProcessors = []string{"Apple M2", "Snapdragon 8 Gen 2", "MediaTek Helio G99"}

	ramOptions     = []int{4, 8, 16, 32, 64}
	storageOptions = []int{128, 256, 512, 1000, 2000}
)

// faqEntries are the fixed customer-support question/answer pairs.
var faqEntries = []Faq{
	{"What is your return policy?",
		"We offer a 30-day return policy for all products. Items must be in original condition with all accessories and packaging."},
	{"Do you offer international shipping?",
		"Yes, we ship to over 100 countries worldwide. Shipping costs and delivery times vary by location."},
	{"What payment methods do you accept?",
		"We accept all major credit cards (Visa, MasterCard, American Express), PayPal, and bank transfers."},
	{"How long is the warranty?",
		"Most products come with a 1-2 year manufacturer warranty. Extended warranty options are available at checkout."},
	{"Can I upgrade RAM or storage after purchase?",
		"Most laptops allow RAM and storage upgrades. However, Apple products typically have soldered components. Check product specifications for upgrade options."},
	{"Do you price match competitors?",
		"Yes, we offer price matching for identical products sold by authorized retailers. Terms and conditions apply."},
	{"How do I track my order?",
		"You'll receive a tracking number via email once your order ships. You can track your package on our website or the carrier's site."},
	{"Can I cancel or modify my order?",
		"Orders can be cancelled or modified within 24 hours of placement. Contact customer service immediately for assistance."},
	{"Do you offer student discounts?",
		"Yes, verified students and educators receive 10-15% discount on eligible products. Verification required through our education portal."},
	{"How do I choose the right laptop?",
		"Consider your use case: for basic tasks, 8GB RAM and an i5 processor suffice. For gaming or video editing, opt for 16GB+ RAM and dedicated graphics."},
	{"How much storage do I need?",
		"256GB suits most users. Choose 512GB+ if you store many photos, videos, or large apps. Cloud storage can supplement device storage."},
}

// manualText is the product care guide chunked into manual_chunk records.
// Each paragraph opens with its section heading.
const manualText = `Getting started with your new device. Before first use, charge the battery to full using the included power adapter. Remove all protective films from the screen and chassis. Press and hold the power button for two seconds to turn the device on, then follow the on-screen setup assistant to select your language, connect to a wireless network, and sign in to your account.

Battery care and charging. Lithium-ion batteries perform best when kept between 20 and 80 percent charge. Avoid exposing the device to temperatures above 35 degrees Celsius while charging. If you plan to store the device for more than a month, charge it to about 50 percent and power it off completely. Battery capacity naturally degrades over hundreds of charge cycles; a replacement is recommended when capacity falls below 80 percent of the original rating.

Cleaning and maintenance. Power off the device and disconnect all cables before cleaning. Use a soft, lint-free cloth slightly dampened with water. Do not use aerosol sprays, solvents, or abrasives, and never spray liquid directly onto the device. Keep ports free of dust using dry compressed air held at least 10 centimeters away.

Warranty service. Your device is covered by a limited manufacturer warranty against defects in materials and workmanship. The warranty does not cover accidental damage, liquid damage, or unauthorized modification. To obtain service, contact support with your proof of purchase and the serial number printed on the bottom of the device. Repairs performed by unauthorized service providers void the remaining warranty.

Troubleshooting common issues. If the device does not power on, connect the charger and wait fifteen minutes before retrying. If the screen freezes, hold the power button for ten seconds to force a restart. If wireless performance is poor, move closer to the router and remove obstructions. Should problems persist after a restart and software update, back up your data and perform a factory reset from the settings menu.`

// Generate produces a full synthetic corpus: count products followed by
// the FAQ set and the chunked product manual.
func (g *Generator) Generate(productCount, chunkSize, chunkOverlap int) []Record {
	records := make([]Record, 0, productCount+len(faqEntries)+8)

	for i := 1; i <= productCount; i++ {
		switch g.rng.Intn(3) {
		case 0:
			records = append(records, g.laptop(i))
		case 1:
			records = append(records, g.phone(i))
		default:
			records = append(records, g.tablet(i))
		}
	}

	for i, faq := range faqEntries {
		records = append(records, faq.Record(fmt.Sprintf("faq_%d", i)))
	}

	seq := 0
	for _, section := range strings.Split(manualText, "\n\n") {
		heading := section
		if dot := strings.Index(section, "."); dot >= 0 {
			heading = section[:dot]
		}
		for _, chunk := range Chunk(section, chunkSize, chunkOverlap) {
			records = append(records, ManualChunk{
				Product: "product_care_guide",
				Section: heading,
				Seq:     seq,
				Text:    chunk,
			}.Record())
			seq++
		}
	}

	return records
}

func (g *Generator) laptop(id int) Record {
	brand := pick(g.rng, laptopBrands)
	model := fmt.Sprintf("%s %s %d", brand, pick(g.rng, laptopSeries), 13+g.rng.Intn(5))
	processor := pick(g.rng, laptopProcessors)
	ram := pick(g.rng, ramOptions)
	storage := pick(g.rng, storageOptions)

	price := 500.0
	if strings.Contains(processor, "i7") || strings.Contains(processor, "Ryzen 7") || strings.Contains(processor, "M2") {
		price += 300
	}
	if strings.Contains(processor, "i9") || strings.Contains(processor, "Ryzen 9") || strings.Contains(processor, "M2 Pro") {
		price += 600
	}
	price += float64(ram)/8*100 + float64(storage)/256*80 + g.rng.Float64()*200

	return g.product("LAP", id, "Laptop", brand, model, processor, ram, storage, price)
}

func (g *Generator) phone(id int) Record {
	brand := pick(g.rng, phoneBrands)
	model := fmt.Sprintf("%s %s %d", brand, pick(g.rng, phoneSeries), 12+g.rng.Intn(4))
	processor := pick(g.rng, phoneProcessors)
	ram := pick(g.rng, []int{6, 8, 12, 16})
	storage := pick(g.rng, []int{128, 256, 512, 1000})

	price := 400.0
	if strings.Contains(processor, "Pro") || strings.Contains(processor, "A17") {
		price += 400
	}
	price += float64(ram)/6*100 + float64(storage)/128*100 + g.rng.Float64()*150

	return g.product("PHN", id, "Smartphone", brand, model, processor, ram, storage, price)
}

func (g *Generator) tablet(id int) Record {
	brand := pick(g.rng, tabletBrands)
	model := fmt.Sprintf("%s %s", brand, pick(g.rng, tabletSeries))
	processor := pick(g.rng, tabletProcessors)
	ram := pick(g.rng, []int{4, 6, 8, 16})
	storage := pick(g.rng, []int{64, 128, 256, 512})

	price := 300.0
	if strings.Contains(processor, "M2") {
		price += 400
	}
	price += float64(ram)/4*80 + float64(storage)/64*50 + g.rng.Float64()*100

	return g.product("TAB", id, "Tablet", brand, model, processor, ram, storage, price)
}

func (g *Generator) product(prefix string, id int, category, brand, model, processor string, ram, storage int, price float64) Record {
	return Product{
		SKU:      fmt.Sprintf("%s-%04d", prefix, id),
		Name:     model,
		Category: category,
		Price:    float64(int(price*100)) / 100,
		RAMGB:    ram,
		Specs: map[string]any{
			"brand":      brand,
			"processor":  processor,
			"storage_gb": storage,
		},
	}.Record()
}

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.Intn(len(options))]
}
