package transferlog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// AzureProvider archives transfer-log objects to an Azure Blob Storage
// container.
type AzureProvider struct {
	Container string
	client    *azblob.Client
}

// NewAzureProvider connects to accountURL (e.g. https://acct.blob.core.windows.net)
// using a shared-key credential and returns a Provider writing to containerName.
func NewAzureProvider(accountURL, accountName, accountKey, containerName string) (*AzureProvider, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("transferlog: azure shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("transferlog: azure client: %w", err)
	}
	return &AzureProvider{Container: containerName, client: client}, nil
}

func (p *AzureProvider) Upload(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := p.client.UploadStream(ctx, p.Container, key, r, nil)
	if err != nil {
		return fmt.Errorf("transferlog: azure upload %s: %w", key, err)
	}
	return nil
}

func (p *AzureProvider) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := p.client.DownloadStream(ctx, p.Container, key, nil)
	if err != nil {
		return nil, fmt.Errorf("transferlog: azure download %s: %w", key, err)
	}
	return resp.Body, nil
}

func (p *AzureProvider) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := p.client.NewListBlobsFlatPager(p.Container, &container.ListBlobsFlatOptions{
		Prefix: &prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("transferlog: azure list %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil && strings.HasPrefix(*item.Name, prefix) {
				keys = append(keys, *item.Name)
			}
		}
	}
	return keys, nil
}

func (p *AzureProvider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteBlob(ctx, p.Container, key, nil)
	if err != nil {
		return fmt.Errorf("transferlog: azure delete %s: %w", key, err)
	}
	return nil
}
